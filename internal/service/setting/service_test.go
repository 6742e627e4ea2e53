package setting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangkhoa18052004/hospital-api/internal/model"
)

type fakeRepo struct {
	values map[string]string
	reads  int
}

func (f *fakeRepo) Get(_ context.Context, key string) (*model.SystemSetting, error) {
	f.reads++
	if v, ok := f.values[key]; ok {
		return &model.SystemSetting{Key: key, Value: v}, nil
	}
	return nil, nil
}

func (f *fakeRepo) Upsert(_ context.Context, setting *model.SystemSetting) error {
	f.values[setting.Key] = setting.Value
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]*model.SystemSetting, error) {
	return nil, nil
}

func TestTypedGettersWithDefaults(t *testing.T) {
	svc := NewService(&fakeRepo{values: map[string]string{}})
	ctx := context.Background()

	assert.Equal(t, DefaultSlotLengthMinutes, svc.SlotLengthMinutes(ctx))
	assert.Equal(t, DefaultCancellationHours, svc.CancellationHours(ctx))
}

func TestTypedGettersFromStore(t *testing.T) {
	svc := NewService(&fakeRepo{values: map[string]string{
		model.SettingSlotLengthMinutes: "30",
		model.SettingCancellationHours: "48",
	}})
	ctx := context.Background()

	assert.Equal(t, 30, svc.SlotLengthMinutes(ctx))
	assert.Equal(t, 48, svc.CancellationHours(ctx))
}

func TestUnparsableValueFallsBack(t *testing.T) {
	svc := NewService(&fakeRepo{values: map[string]string{
		model.SettingSlotLengthMinutes: "bogus",
		model.SettingCancellationHours: "-5",
	}})
	ctx := context.Background()

	assert.Equal(t, DefaultSlotLengthMinutes, svc.SlotLengthMinutes(ctx))
	assert.Equal(t, DefaultCancellationHours, svc.CancellationHours(ctx))
}

func TestGetCachesReads(t *testing.T) {
	repo := &fakeRepo{values: map[string]string{"k": "v"}}
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		v, err := svc.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, repo.reads)
}

func TestUpsertInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{values: map[string]string{"k": "old"}}
	svc := NewService(repo)
	ctx := context.Background()

	v, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", v)

	_, err = svc.Upsert(ctx, "k", &model.UpsertSettingRequest{Value: "new"}, uuid.New())
	require.NoError(t, err)

	v, err = svc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}
