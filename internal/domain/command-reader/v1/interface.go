package commandreaderv1

import (
	"context"
	"errors"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
)

// ErrNoMessage is returned by ReadMessage when the wait expired with nothing to read.
var ErrNoMessage = errors.New("no command available")

// Message is a leased command. Raw is the payload as it sits on the processing
// list and is what Ack removes.
type Message struct {
	Raw     string
	Command commandv1.Command
}

// CommandReader defines the interface for reading commands from the shared command channel.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=commandreaderv1_mock
type CommandReader interface {
	// ReadMessage blocks for a bounded time and leases the next command. When
	// the payload cannot be decoded the Message still carries Raw so it can be acked.
	ReadMessage(ctx context.Context) (Message, error)
	// Ack drops a leased command once it has been applied
	Ack(ctx context.Context, msg Message) error
	// Recover requeues commands leased by a previous run that were never acked
	Recover(ctx context.Context) (int, error)
	// Close closes the reader
	Close() error
}
