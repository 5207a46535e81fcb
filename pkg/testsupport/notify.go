package testsupport

import (
	"sync"

	"github.com/goliatone/go-pluginform/pkg/notify"
)

// RecordingSink captures notifications for assertions.
type RecordingSink struct {
	mu        sync.Mutex
	emitted   []notify.Message
	tokens    []notify.Token
	dismissed map[notify.Token]int
}

// NewRecordingSink returns an empty recorder.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{dismissed: make(map[notify.Token]int)}
}

func (r *RecordingSink) Emit(msg notify.Message) notify.Token {
	token := notify.NextToken()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitted = append(r.emitted, msg)
	r.tokens = append(r.tokens, token)
	return token
}

func (r *RecordingSink) Dismiss(token notify.Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed[token]++
}

// Messages returns every emitted message in order.
func (r *RecordingSink) Messages() []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Message(nil), r.emitted...)
}

// Dismissals returns how often the token of the i-th emitted message was
// dismissed.
func (r *RecordingSink) Dismissals(i int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.tokens) {
		return 0
	}
	return r.dismissed[r.tokens[i]]
}

// TotalDismissals counts every dismiss call.
func (r *RecordingSink) TotalDismissals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.dismissed {
		total += n
	}
	return total
}
