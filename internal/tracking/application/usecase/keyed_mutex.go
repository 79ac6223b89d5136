package usecase

import "sync"

// KeyedMutex — взаимное исключение по deliveryID: переходы статуса одной
// доставки сериализуются, разные доставки друг друга не блокируют.
//
// Запись держится пока есть ожидающие (refs), после освобождается —
// map не растет бесконечно с числом когда-либо виденных доставок.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex создает пустой набор замков
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock захватывает мьютекс ключа; возвращает функцию освобождения
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
