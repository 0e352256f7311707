package storageopt

import (
	"errors"
	"math"
)

var (
	// ErrInvalidPage 页码必须 >= 1。
	ErrInvalidPage = errors.New("storageopt: invalid page number, must be >= 1")

	// ErrInvalidLimit 每页条数必须 >= 1。
	ErrInvalidLimit = errors.New("storageopt: invalid limit, must be >= 1")

	// ErrPageOverflow (page-1)*limit 超出 int64。
	ErrPageOverflow = errors.New("storageopt: page calculation overflow, reduce page number or limit")
)

// ValidatePagination 校验分页参数并返回偏移量 (page-1)*limit。
func ValidatePagination(page, limit int64) (offset int64, err error) {
	if page < 1 {
		return 0, ErrInvalidPage
	}
	if limit < 1 {
		return 0, ErrInvalidLimit
	}
	if page-1 > math.MaxInt64/limit {
		return 0, ErrPageOverflow
	}
	return (page - 1) * limit, nil
}

// CalculateTotalPages 返回 ceil(total/limit)，total 或 limit 非正时为 0。
func CalculateTotalPages(total, limit int64) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}
