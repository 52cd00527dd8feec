package service

import "errors"

// Типизированные ошибки бизнес-логики. Транспортный слой маппит их в HTTP-статусы,
// сырые ошибки хранилищ наружу не выходят.
var (
	// ErrInvalidRequest — некорректные входные данные (например, количество <= 0).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrProductNotFound — товар не существует.
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock — не хватает остатка; ожидаемый бизнес-отказ, не сбой.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotAuthorized — попытка изменить заказ не его ремесленником.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrOrderNotFound — заказ не существует.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition — недопустимый переход статуса заказа.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrSettlementFailed — зачисление в кошелёк сорвалось после резервирования;
	// резерв к этому моменту уже возвращён компенсацией.
	ErrSettlementFailed = errors.New("settlement failed")
)
