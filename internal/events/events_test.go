package events

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	applog "marketplace/internal/log"
)

type failing struct{}

func (failing) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestEmitLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(os.Stdout) })

	Emit(context.Background(), failing{}, New(ProductDeleted, map[string]any{"id": "p1"}))
	assert.Contains(t, buf.String(), "event.publish_failed")
	assert.Contains(t, buf.String(), "broker down")

	buf.Reset()
	Emit(context.Background(), LogPublisher{}, New(ShopCreated, map[string]any{"slug": "chez-adjoua"}))
	assert.Contains(t, buf.String(), `"event_type":"shop.created"`)
	assert.Contains(t, buf.String(), "chez-adjoua")
}
