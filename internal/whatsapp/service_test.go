package whatsapp

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		in, cc, want string
	}{
		{"052-123-4567", "972", "972521234567"},
		{"+972 52 123 4567", "972", "972521234567"},
		{"+972 (0)52 123 4567", "972", "972521234567"},
		{"+44 (0)20 7946 0018", "44", "442079460018"},
		{"+1 415 555 0100", "1", "14155550100"},
		{"0521234567", "", "0521234567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhoneNumber(tt.in, tt.cc), tt.in)
	}
}

func TestSenderNumber(t *testing.T) {
	jid := types.NewJID("972521234567", types.DefaultUserServer)
	assert.Equal(t, "972521234567", senderNumber(jid))
}

func TestMessageHandlerSwapWhileReceiving(t *testing.T) {
	s := &Service{log: zerolog.Nop()}
	evt := &events.Message{
		Info: types.MessageInfo{MessageSource: types.MessageSource{
			Sender: types.NewJID("972521234567", types.DefaultUserServer),
		}},
		Message: &waE2E.Message{Conversation: proto.String("summary")},
	}

	var (
		mu  sync.Mutex
		got []Message
		wg  sync.WaitGroup
	)
	handler := func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		return nil
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.handleMessage(evt)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.SetMessageHandler(handler)
		}
	}()
	wg.Wait()

	s.handleMessage(evt)
	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, got)
	assert.Equal(t, Message{Sender: "972521234567", Text: "summary"}, got[len(got)-1])
}
