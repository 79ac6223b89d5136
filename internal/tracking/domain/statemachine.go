package domain

import "fmt"

// nextStatus — единственный разрешенный следующий шаг канонического пути
var nextStatus = map[string]string{
	StatusPending:        StatusAssigned,
	StatusAssigned:       StatusEnRoutePickup,
	StatusEnRoutePickup:  StatusPickedUp,
	StatusPickedUp:       StatusEnRouteDropoff,
	StatusEnRouteDropoff: StatusDelivered,
}

// ValidStatus проверяет, что строка — известный статус доставки
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusEnRoutePickup, StatusPickedUp,
		StatusEnRouteDropoff, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// CanTransition сообщает, допустим ли переход from -> to.
// Разрешены только шаг вперед по каноническому пути и cancelled
// из любого нетерминального статуса.
func CanTransition(from, to string) bool {
	if from == StatusDelivered || from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return nextStatus[from] == to
}

// CheckTransition возвращает ErrIllegalTransition с контекстом для недопустимого перехода
func CheckTransition(from, to string) error {
	if !ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}
