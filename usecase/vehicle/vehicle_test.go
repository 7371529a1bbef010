package vehicle

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgen/backend/domain"
	"github.com/fleetgen/backend/usecase"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newTestUseCase() (*UseCase, *fakeVehicleRepo, *fakeEventLog, *fakeBroker) {
	repo := newFakeVehicleRepo()
	events := newFakeEventLog()
	broker := &fakeBroker{}
	return New(repo, events, broker, nil), repo, events, broker
}

func decodePayload(t *testing.T, event domain.VehicleEvent) domain.EventPayload {
	t.Helper()
	var payload domain.EventPayload
	require.NoError(t, json.Unmarshal(event.Data, &payload))
	return payload
}

func TestCreateDefaultsActiveFalse(t *testing.T) {
	uc, repo, events, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{
		Name: strPtr("Truck A"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.Active)
	assert.Equal(t, "Truck A", created.Name)
	assert.Equal(t, "operator", created.Metadata.CreatedBy)

	stored, ok := repo.get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created.Name, stored.Name)

	all := events.all()
	require.Len(t, all, 1)
	assert.Equal(t, domain.EventTypeVehicleModified, all[0].EventType)
	assert.Equal(t, created.ID, all[0].AggregateID)
	assert.Equal(t, "operator", all[0].User)

	payload := decodePayload(t, all[0])
	assert.Equal(t, domain.ModTypeCreate, payload.ModType)
	assert.Equal(t, "Truck A", payload.Vehicle.Name)
}

func TestCreateHonorsExplicitActive(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{
		Name:   strPtr("Truck A"),
		Active: boolPtr(true),
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{
		Name:           strPtr("Truck A"),
		Description:    strPtr("long hauler"),
		OrganizationID: "org-1",
		Active:         boolPtr(true),
	})
	require.NoError(t, err)

	fetched, err := uc.Get(context.Background(), created.ID, "org-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "Truck A", fetched.Name)
	assert.Equal(t, "long hauler", fetched.Description)
	assert.True(t, fetched.Active)
}

func TestCreateRequiresName(t *testing.T) {
	uc, repo, events, broker := newTestUseCase()

	_, err := uc.Create(context.Background(), "operator", Input{})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	// Rejected before any side effect.
	assert.Equal(t, 0, repo.size())
	assert.Empty(t, events.all())
	assert.Equal(t, 0, broker.count())
}

func TestCreatePublishesViewUpdate(t *testing.T) {
	uc, _, _, broker := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return broker.count() == 1 }, time.Second, 5*time.Millisecond)

	msg := broker.messages()[0]
	assert.Equal(t, usecase.TopicMaterializedView, msg.Topic)
	update, ok := msg.Payload.(ViewUpdate)
	require.True(t, ok)
	assert.Equal(t, created.ID, update.Data.ID)
}

func TestCreateSucceedsWhenPublishFails(t *testing.T) {
	uc, _, _, broker := newTestUseCase()
	broker.publishErr = errors.New("broker down")

	_, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.NoError(t, err)
}

func TestCreateFailsWhenEventAppendFails(t *testing.T) {
	uc, _, events, _ := newTestUseCase()
	events.appendErr = errors.New("event log down")

	_, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.Error(t, err)
}

func TestUpdateMergeKeepsAbsentFields(t *testing.T) {
	uc, _, events, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{
		Name:        strPtr("Truck A"),
		Description: strPtr("original"),
		Active:      boolPtr(true),
	})
	require.NoError(t, err)

	updated, err := uc.Update(context.Background(), "editor", created.ID, Input{
		Description: strPtr("revised"),
	}, true)
	require.NoError(t, err)

	assert.Equal(t, "Truck A", updated.Name)
	assert.Equal(t, "revised", updated.Description)
	assert.True(t, updated.Active)

	all := events.all()
	require.Len(t, all, 2)
	payload := decodePayload(t, all[1])
	assert.Equal(t, domain.ModTypeUpdateMerge, payload.ModType)
}

func TestUpdateReplaceDefaultsAbsentFields(t *testing.T) {
	uc, _, events, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{
		Name:        strPtr("Truck A"),
		Description: strPtr("original"),
		Active:      boolPtr(true),
	})
	require.NoError(t, err)

	updated, err := uc.Update(context.Background(), "editor", created.ID, Input{
		Name: strPtr("Truck B"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Truck B", updated.Name)
	assert.Empty(t, updated.Description)
	assert.False(t, updated.Active)

	all := events.all()
	require.Len(t, all, 2)
	payload := decodePayload(t, all[1])
	assert.Equal(t, domain.ModTypeUpdateReplace, payload.ModType)
}

func TestUpdateMissingVehicle(t *testing.T) {
	uc, _, events, _ := newTestUseCase()

	_, err := uc.Update(context.Background(), "editor", "missing", Input{Name: strPtr("x")}, true)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, events.all())
}

func TestDeleteAppendsEventPerRequestedID(t *testing.T) {
	uc, repo, events, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.NoError(t, err)

	result, err := uc.Delete(context.Background(), "operator", []string{created.ID, "never-existed"})
	require.NoError(t, err)
	assert.Equal(t, 400, result.Code)
	assert.Contains(t, result.Message, "not found for deletion")
	assert.Equal(t, 0, repo.size())

	// One CREATE plus one DELETE per requested id, existing or not.
	all := events.all()
	require.Len(t, all, 3)
	for _, event := range all[1:] {
		payload := decodePayload(t, event)
		assert.Equal(t, domain.ModTypeDelete, payload.ModType)
	}
}

func TestDeleteExistingReturnsSuccess(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A"), Active: boolPtr(true)})
	require.NoError(t, err)

	result, err := uc.Delete(context.Background(), "operator", []string{created.ID})
	require.NoError(t, err)
	assert.Equal(t, 200, result.Code)
	assert.Contains(t, result.Message, "has been deleted")

	_, err = uc.Get(context.Background(), created.ID, "")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestDeletePublishesPlaceholder(t *testing.T) {
	uc, _, _, broker := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.NoError(t, err)

	_, err = uc.Delete(context.Background(), "operator", []string{created.ID})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return broker.count() == 2 }, time.Second, 5*time.Millisecond)

	var placeholder *ViewUpdate
	for _, msg := range broker.messages() {
		update, ok := msg.Payload.(ViewUpdate)
		if ok && update.Data.ID == "deleted" {
			placeholder = &update
		}
	}
	require.NotNil(t, placeholder, "placeholder notification missing")
	assert.Equal(t, "", placeholder.Data.Name)
	assert.False(t, placeholder.Data.Active)
	assert.Equal(t, "", placeholder.Data.Description)
}

func TestDeleteToleratesEventAppendFailures(t *testing.T) {
	uc, _, events, _ := newTestUseCase()

	created, err := uc.Create(context.Background(), "operator", Input{Name: strPtr("Truck A")})
	require.NoError(t, err)

	events.failFor[created.ID] = errors.New("append refused")

	result, err := uc.Delete(context.Background(), "operator", []string{created.ID})
	require.NoError(t, err)
	assert.Equal(t, 200, result.Code)
}

func TestDeleteRequiresIDs(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	_, err := uc.Delete(context.Background(), "operator", nil)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestListTotalCountOnlyWhenRequested(t *testing.T) {
	uc, _, _, _ := newTestUseCase()

	for _, name := range []string{"Truck A", "Truck B", "Van C"} {
		_, err := uc.Create(context.Background(), "operator", Input{Name: strPtr(name)})
		require.NoError(t, err)
	}

	result, err := uc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, result.Listing, 3)
	assert.Nil(t, result.QueryTotalResultCount)

	result, err = uc.List(context.Background(), ListQuery{QueryTotalResultCount: true})
	require.NoError(t, err)
	require.NotNil(t, result.QueryTotalResultCount)
	assert.Equal(t, 3, *result.QueryTotalResultCount)
}
