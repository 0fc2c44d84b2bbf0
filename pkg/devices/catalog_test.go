package devices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

func TestLookupModel(t *testing.T) {
	tests := []struct {
		in   string
		want uint16
	}{
		{"moving-light", MovingLightID},
		{"Dimmer", DimmerID},
		{"0x0101", MovingLightID},
		{"258", DimmerID},
		{"none", 0},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := LookupModel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := LookupModel("fog-machine")
	assert.ErrorIs(t, err, model.ErrUnknownModel)
	_, err = LookupModel("0x0999")
	assert.ErrorIs(t, err, model.ErrUnknownModel)
}

func TestRegisterAll(t *testing.T) {
	reg := model.NewRegistry(responder.New(rdm.NewUID(0x7a70, 1)))
	require.NoError(t, RegisterAll(reg))

	var ids []uint16
	for _, m := range reg.Models() {
		ids = append(ids, m.ID())
	}
	assert.Equal(t, []uint16{MovingLightID, DimmerID}, ids)
	assert.Equal(t, []string{"dimmer", "moving-light"}, Names())
}

func TestNewBusResponder(t *testing.T) {
	uid := rdm.NewUID(0x7a70, 0x10)
	reg, err := NewBusResponder(uid, DimmerID)
	require.NoError(t, err)
	require.NotNil(t, reg.Active())
	assert.Equal(t, DimmerID, reg.Active().ID())
	assert.Equal(t, uid, reg.Responder().UID())

	_, err = NewBusResponder(uid, 0x0999)
	assert.ErrorIs(t, err, model.ErrUnknownModel)

	idle, err := NewBusResponder(uid, 0)
	require.NoError(t, err)
	assert.Nil(t, idle.Active())
}
