package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/parkingcontrol/internal/domain/parkingspot"
	"github.com/geocoder89/parkingcontrol/internal/notifications"
	"github.com/geocoder89/parkingcontrol/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.SpotChangeInput
	err  error
}

func (n *recordingNotifier) NotifySpotChange(_ context.Context, in notifications.SpotChangeInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, in)
	return n.err
}

// failingStore embeds the memory repo and overrides single operations with an error.
type failingStore struct {
	*memory.ParkingSpotsRepo
	lookupErr error
	listErr   error
}

func (s failingStore) FindByLicensePlateCar(ctx context.Context, plate string) (parkingspot.ParkingSpot, error) {
	if s.lookupErr != nil {
		return parkingspot.ParkingSpot{}, s.lookupErr
	}
	return s.ParkingSpotsRepo.FindByLicensePlateCar(ctx, plate)
}

func (s failingStore) GetByID(ctx context.Context, id string) (parkingspot.ParkingSpot, error) {
	if s.lookupErr != nil {
		return parkingspot.ParkingSpot{}, s.lookupErr
	}
	return s.ParkingSpotsRepo.GetByID(ctx, id)
}

func (s failingStore) List(ctx context.Context, req parkingspot.PageRequest) ([]parkingspot.ParkingSpot, int, error) {
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.ParkingSpotsRepo.List(ctx, req)
}

var fixedNow = time.Date(2024, 5, 1, 10, 30, 15, 987654321, time.FixedZone("BRT", -3*60*60))

func newTestService(store Store, notifier notifications.Notifier) *ParkingSpotService {
	svc := NewParkingSpotService(store, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func request(number, plate, block string) parkingspot.ParkingSpotRequest {
	return parkingspot.ParkingSpotRequest{
		ParkingSpotNumber: number,
		LicensePlateCar:   plate,
		CarBrand:          "Audi",
		CarModel:          "Q5",
		CarColor:          "Black",
		ResponsibleName:   "Carlos Daniel",
		Block:             block,
	}
}

func TestSave_AssignsIDAndUTCRegistrationDate(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(memory.NewParkingSpotsRepo(), notifier)

	saved, err := svc.Save(context.Background(), request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, time.UTC, saved.RegistrationDate.Location())
	assert.True(t, time.Date(2024, 5, 1, 13, 30, 15, 0, time.UTC).Equal(saved.RegistrationDate), "got %v", saved.RegistrationDate)
	assert.Equal(t, "205B", saved.ParkingSpotNumber)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notifications.ActionCreated, notifier.sent[0].Action)
	assert.Equal(t, saved.ID, notifier.sent[0].ID)
}

func TestSave_IDsAreUnique(t *testing.T) {
	svc := newTestService(memory.NewParkingSpotsRepo(), nil)

	a, err := svc.Save(context.Background(), request("1", "AAA0001", "A"))
	require.NoError(t, err)
	b, err := svc.Save(context.Background(), request("2", "AAA0002", "B"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestSave_StoreConstraintWins(t *testing.T) {
	svc := newTestService(memory.NewParkingSpotsRepo(), nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	_, err = svc.Save(ctx, request("205B", "XYZ9999", "C"))
	require.ErrorIs(t, err, parkingspot.ErrSpotNumberInUse)
	assert.Equal(t, parkingspot.ConflictSpotNumber, parkingspot.ConflictFromError(err))

	_, err = svc.Save(ctx, request("300A", "XYZ9999", "B"))
	require.ErrorIs(t, err, parkingspot.ErrBlockInUse)
}

func TestSave_NotifierFailureDoesNotFailTheWrite(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("redis down")}
	svc := newTestService(memory.NewParkingSpotsRepo(), notifier)

	saved, err := svc.Save(context.Background(), request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	_, found, err := svc.FindOneByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCheckSpotRegistered(t *testing.T) {
	store := memory.NewParkingSpotsRepo()
	svc := newTestService(store, nil)
	ctx := context.Background()

	_, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  parkingspot.ParkingSpotRequest
		want parkingspot.Conflict
	}{
		{name: "free", req: request("300A", "XYZ9999", "C"), want: parkingspot.ConflictNone},
		{name: "plate in use", req: request("300A", "RRS8562", "C"), want: parkingspot.ConflictLicensePlate},
		{name: "spot in use", req: request("205B", "XYZ9999", "C"), want: parkingspot.ConflictSpotNumber},
		{name: "both in use reports plate", req: request("205B", "RRS8562", "C"), want: parkingspot.ConflictLicensePlate},
		// block has no pre-check; the store rejects it on insert
		{name: "block only", req: request("300A", "XYZ9999", "B"), want: parkingspot.ConflictNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CheckSpotRegistered(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckSpotRegistered_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := newTestService(failingStore{ParkingSpotsRepo: memory.NewParkingSpotsRepo(), lookupErr: boom}, nil)

	got, err := svc.CheckSpotRegistered(context.Background(), request("1", "AAA0001", "A"))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, parkingspot.ConflictNone, got)
}

func TestFindOneByID(t *testing.T) {
	svc := newTestService(memory.NewParkingSpotsRepo(), nil)
	ctx := context.Background()

	saved, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	got, found, err := svc.FindOneByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, saved, got)

	_, found, err = svc.FindOneByID(ctx, "7d0a4a6e-2a55-4f4e-8f7e-0b2d7d1c9e01")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFindOneByID_StoreError(t *testing.T) {
	boom := errors.New("timeout")
	svc := newTestService(failingStore{ParkingSpotsRepo: memory.NewParkingSpotsRepo(), lookupErr: boom}, nil)

	_, found, err := svc.FindOneByID(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	assert.False(t, found)
}

func TestFindAll(t *testing.T) {
	svc := newTestService(memory.NewParkingSpotsRepo(), nil)
	ctx := context.Background()

	empty, err := svc.FindAll(ctx, parkingspot.DefaultPageRequest())
	require.NoError(t, err)
	assert.NotNil(t, empty.Content)
	assert.True(t, empty.Empty)
	assert.Equal(t, 0, empty.TotalElements)

	for i, plate := range []string{"AAA0001", "AAA0002", "AAA0003"} {
		n := string(rune('1' + i))
		_, err := svc.Save(ctx, request(n, plate, "B"+n))
		require.NoError(t, err)
	}

	page, err := svc.FindAll(ctx, parkingspot.PageRequest{Page: 0, Size: 2, Sort: "licensePlateCar"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.First)
	assert.False(t, page.Last)
	require.Len(t, page.Content, 2)
	assert.Equal(t, "AAA0001", page.Content[0].LicensePlateCar)
	assert.Equal(t, "AAA0002", page.Content[1].LicensePlateCar)
}

func TestFindAll_StoreError(t *testing.T) {
	boom := errors.New("boom")
	svc := newTestService(failingStore{ParkingSpotsRepo: memory.NewParkingSpotsRepo(), listErr: boom}, nil)

	_, err := svc.FindAll(context.Background(), parkingspot.DefaultPageRequest())
	require.ErrorIs(t, err, boom)
}

func TestUpdateOne_KeepsIDAndRegistrationDate(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(memory.NewParkingSpotsRepo(), notifier)
	ctx := context.Background()

	saved, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(48 * time.Hour) }

	updated, err := svc.UpdateOne(ctx, saved, request("300A", "ABC1234", "C").AsUpdate())
	require.NoError(t, err)

	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, saved.RegistrationDate, updated.RegistrationDate)
	assert.Equal(t, "300A", updated.ParkingSpotNumber)
	assert.Equal(t, "ABC1234", updated.LicensePlateCar)
	assert.Equal(t, "C", updated.Block)

	// keeping its own values is not a conflict
	_, err = svc.UpdateOne(ctx, updated, request("300A", "ABC1234", "C").AsUpdate())
	require.NoError(t, err)

	require.Len(t, notifier.sent, 3)
	assert.Equal(t, notifications.ActionUpdated, notifier.sent[1].Action)
}

func TestUpdateOne_ConflictWithAnotherRecord(t *testing.T) {
	svc := newTestService(memory.NewParkingSpotsRepo(), nil)
	ctx := context.Background()

	first, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)
	_, err = svc.Save(ctx, request("300A", "ABC1234", "C"))
	require.NoError(t, err)

	_, err = svc.UpdateOne(ctx, first, request("205B", "ABC1234", "B").AsUpdate())
	require.ErrorIs(t, err, parkingspot.ErrLicensePlateInUse)

	stored, _, err := svc.FindOneByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "RRS8562", stored.LicensePlateCar)
}

func TestDelete(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(memory.NewParkingSpotsRepo(), notifier)
	ctx := context.Background()

	saved, err := svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, saved.ID))

	_, found, err := svc.FindOneByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, found)

	err = svc.Delete(ctx, saved.ID)
	require.ErrorIs(t, err, parkingspot.ErrNotFound)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notifications.ActionDeleted, notifier.sent[1].Action)
	assert.Equal(t, saved.ID, notifier.sent[1].ID)

	// the freed plate, spot and block can be used again
	_, err = svc.Save(ctx, request("205B", "RRS8562", "B"))
	require.NoError(t, err)
}
