package tagqueue

import "github.com/memvault/memvault/pkg/domain/types"

type task struct {
	memeID     types.MemeID
	retryCount int
}

// deque is a FIFO of pending tasks. Retried tasks go back to the tail
// so one failing image cannot starve the rest of the queue.
type deque struct {
	tasks []*task
}

func (d *deque) PushTail(t *task) {
	d.tasks = append(d.tasks, t)
}

func (d *deque) PopHead() *task {
	if len(d.tasks) == 0 {
		return nil
	}
	head := d.tasks[0]
	d.tasks = d.tasks[1:]
	return head
}

func (d *deque) Len() int {
	return len(d.tasks)
}

func (d *deque) Contains(id types.MemeID) bool {
	for _, t := range d.tasks {
		if t.memeID == id {
			return true
		}
	}
	return false
}
