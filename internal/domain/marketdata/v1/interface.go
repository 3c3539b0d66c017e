package marketdatav1

import "context"

// Publisher delivers the events of one applied command, in order.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=marketdatav1_mock
type Publisher interface {
	Publish(ctx context.Context, events []Event) error
}
