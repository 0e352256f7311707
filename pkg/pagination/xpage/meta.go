package xpage

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/omeyang/xpage/internal/storageopt"
)

// Meta 分页元数据。
type Meta struct {
	TotalItems  int64  `json:"totalItems"`
	PerPage     int64  `json:"perPage"`
	CurrentPage int64  `json:"currentPage"`
	TotalPages  int64  `json:"totalPages"`
	HasNextPage bool   `json:"hasNextPage"`
	HasPrevPage bool   `json:"hasPrevPage"`
	NextPage    *int64 `json:"nextPage"`
	PrevPage    *int64 `json:"prevPage"`
}

// Result 一页查询结果，Data 不为 nil。
type Result struct {
	Data       []bson.M `json:"data"`
	Pagination Meta     `json:"pagination"`
}

// NewMeta 根据总数、每页条数和当前页计算元数据。
//
// 当前页超出总页数时 HasNextPage 为 false，HasPrevPage 仍按 currentPage > 1 计算。
func NewMeta(totalItems, perPage, currentPage int64) Meta {
	m := Meta{
		TotalItems:  totalItems,
		PerPage:     perPage,
		CurrentPage: currentPage,
		TotalPages:  storageopt.CalculateTotalPages(totalItems, perPage),
	}
	m.HasNextPage = m.CurrentPage < m.TotalPages
	m.HasPrevPage = m.CurrentPage > 1
	if m.HasNextPage {
		next := m.CurrentPage + 1
		m.NextPage = &next
	}
	if m.HasPrevPage {
		prev := m.CurrentPage - 1
		m.PrevPage = &prev
	}
	return m
}
