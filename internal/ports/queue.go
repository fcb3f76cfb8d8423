package ports

import "github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"

type FrameQueue interface {
	Enqueue(f *domain.Frame) bool
	DequeueBatch(max int) []*domain.Frame
	Len() int
}
