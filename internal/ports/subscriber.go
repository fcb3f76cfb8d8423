package ports

import "github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"

// Subscriber consumes published frames in tick order.
type Subscriber interface {
	Deliver(f *domain.Frame) error
	Name() string
}
