package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/core/types/enums"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/domain"
	"github.com/scutrobotlab/SimulatorX-sub000/internal/engine/handlers"
	"github.com/scutrobotlab/SimulatorX-sub000/pkg/api"
)

type fakeBus struct {
	sent []domain.Action
}

func (b *fakeBus) Send(a domain.Action) { b.sent = append(b.sent, a) }

type fakeFinder map[types.Identity]bool

func (f fakeFinder) Contains(id types.Identity) bool { return f[id] }

var (
	redHero  = types.NewIdentity(enums.CampRed, enums.RoleHero, 1, 0)
	blueHero = types.NewIdentity(enums.CampBlue, enums.RoleHero, 1, 0)
	runeID   = types.NewIdentity(enums.CampNeutral, enums.RolePowerRune, 1, 0)
)

func newContext(actor types.Identity) (handlers.Context, *fakeBus) {
	bus := &fakeBus{}
	return handlers.Context{
		Bus:    bus,
		Finder: fakeFinder{redHero: true, blueHero: true, runeID: true},
		Actor:  actor,
	}, bus
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandleFire(t *testing.T) {
	ctx, bus := newContext(redHero)
	h := handlers.WithPayload(HandleFire)

	_, err := h(ctx, raw(t, api.FirePayload{TargetID: blueHero.String(), Plate: 2}))
	require.NoError(t, err)
	require.Len(t, bus.sent, 1)
	assert.Equal(t, domain.CombatFire{Shooter: redHero, Target: blueHero, Plate: 2}, bus.sent[0])
}

func TestHandleFire_Errors(t *testing.T) {
	tests := []struct {
		name    string
		actor   types.Identity
		payload json.RawMessage
		wantErr error
	}{
		{"observer", types.NilIdentity, json.RawMessage(`{"targetId":"BLUE/HERO#1.0"}`), handlers.ErrNoActor},
		{"unknown target", redHero, json.RawMessage(`{"targetId":"BLUE/HERO#9.0"}`), handlers.ErrUnknownEntity},
		{"empty payload", redHero, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, bus := newContext(tt.actor)
			_, err := handlers.WithPayload(HandleFire)(ctx, tt.payload)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, bus.sent)
		})
	}
}

func TestHandleRune(t *testing.T) {
	ctx, bus := newContext(blueHero)

	_, err := handlers.WithPayload(HandleRuneStart)(ctx, raw(t, api.RunePayload{RuneID: runeID.String()}))
	require.NoError(t, err)
	_, err = handlers.WithPayload(HandleRuneHit)(ctx, raw(t, api.RuneHitPayload{RuneID: runeID.String(), Branch: 3}))
	require.NoError(t, err)

	assert.Equal(t, []domain.Action{
		domain.RuneStart{Rune: runeID, Camp: enums.CampBlue},
		domain.RuneHit{Rune: runeID, Camp: enums.CampBlue, Branch: 3},
	}, bus.sent)

	// Не руна
	_, err = handlers.WithPayload(HandleRuneStart)(ctx, raw(t, api.RunePayload{RuneID: redHero.String()}))
	assert.Error(t, err)
}

func TestHandleMoveAndSupply(t *testing.T) {
	ctx, bus := newContext(redHero)

	_, err := handlers.WithPayload(HandleMove)(ctx, raw(t, api.MovePayload{X: 3.5, Y: 1}))
	require.NoError(t, err)
	_, err = handlers.WithPayload(HandleSupply)(ctx, raw(t, api.SupplyPayload{Amount: 100}))
	require.NoError(t, err)
	_, err = handlers.WithPayload(HandleSupply)(ctx, raw(t, api.SupplyPayload{Amount: 0}))
	require.Error(t, err)

	assert.Equal(t, []domain.Action{
		domain.RobotMove{Receiver: redHero, X: 3.5, Y: 1},
		domain.SupplyRequest{Receiver: redHero, Amount: 100},
	}, bus.sent)
}

func TestHandleInit(t *testing.T) {
	ctx, _ := newContext(types.NilIdentity)
	res, err := handlers.WithEmptyPayload(HandleInit)(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "INFO", res.MsgType)
}
