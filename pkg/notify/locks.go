package notify

import "sync"

// deviceLocks serializes battery checks per device: device_id -> mutex.
// Two readings for the same device arriving together would otherwise race
// on the tracker's read-modify-write. Checks across devices stay parallel.
type deviceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDeviceLocks() *deviceLocks {
	return &deviceLocks{
		locks: make(map[string]*sync.Mutex),
	}
}

func (d *deviceLocks) get(deviceID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()

	lock, exists := d.locks[deviceID]
	if !exists {
		lock = &sync.Mutex{}
		d.locks[deviceID] = lock
	}
	return lock
}
