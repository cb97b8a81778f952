package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szxp/screenie/sizefit"
)

func TestBroker_Publish(t *testing.T) {
	b := NewBroker(4, nil)

	received := make(chan sizefit.Config, 1)
	require.NoError(t, b.Subscribe(ThumbnailConfigChanged, func(c sizefit.Config) {
		received <- c
	}))

	cfg, err := sizefit.NewConfig(sizefit.SizeOf(640, 480), sizefit.FitToWidth)
	require.NoError(t, err)
	b.Publish(ThumbnailConfigChanged, cfg)

	select {
	case got := <-received:
		assert.Equal(t, cfg, got)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestBroker_SubscribeInvalid(t *testing.T) {
	b := NewBroker(1, nil)
	assert.Error(t, b.Subscribe(ThumbnailConfigChanged, "not a function"))
}
