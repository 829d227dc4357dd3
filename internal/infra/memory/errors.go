package memory

import "errors"

var (
	errBatchCheck        = errors.New("memory: batch remaining out of range")
	errServiceStockCheck = errors.New("memory: service stock would go negative")
)
