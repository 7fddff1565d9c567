package arcade

import "sync"

// sessionLocks serialises calls for the same session id within the process.
// Entries live only while someone holds or waits on them.
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// lock blocks until sid is free and returns its release func.
func (l *sessionLocks) lock(sid string) (unlock func()) {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sessionLock)
	}
	s, ok := l.m[sid]
	if !ok {
		s = &sessionLock{}
		l.m[sid] = s
	}
	s.refs++
	l.mu.Unlock()

	s.Lock()
	return func() {
		s.Unlock()
		l.mu.Lock()
		s.refs--
		if s.refs == 0 {
			delete(l.m, sid)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
