package xpage

import (
	"errors"
	"fmt"

	"github.com/omeyang/xpage/internal/storageopt"
)

var (
	// ErrInvalidPage 页码为负数。
	ErrInvalidPage = fmt.Errorf("xpage: %w", storageopt.ErrInvalidPage)

	// ErrInvalidLimit 每页条数为负数。
	ErrInvalidLimit = fmt.Errorf("xpage: %w", storageopt.ErrInvalidLimit)

	// ErrPageOverflow 偏移量超出 int64。
	ErrPageOverflow = fmt.Errorf("xpage: %w", storageopt.ErrPageOverflow)

	// ErrNilSource 数据源为 nil。
	ErrNilSource = errors.New("xpage: nil source")

	// ErrNilContext context 为 nil。
	ErrNilContext = errors.New("xpage: nil context")

	// ErrInvalidPopulate 关联展开缺少 Path 或 From。
	ErrInvalidPopulate = errors.New("xpage: populate requires path and from")

	// ErrInvalidCount 数据源返回了负数或无法识别的计数。
	ErrInvalidCount = errors.New("xpage: invalid count")

	// ErrMalformedFacet $facet 结果结构不符合预期。
	ErrMalformedFacet = errors.New("xpage: malformed facet result")
)

// 操作名。
const (
	OpPaginate          = "paginate"
	OpPaginateAggregate = "paginate_aggregate"
)

// 失败阶段。
const (
	StageFind      = "find"
	StageCount     = "count"
	StageAggregate = "aggregate"
	StageFacet     = "facet"
)

// QueryError 数据源调用失败，保留原始错误。
type QueryError struct {
	Op    string
	Stage string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("xpage %s %s: %v", e.Op, e.Stage, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsQueryError 判断 err 链中是否有 *QueryError。
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// mapWindowError 将 storageopt 的哨兵错误映射为本包错误。
func mapWindowError(err error) error {
	switch {
	case errors.Is(err, storageopt.ErrInvalidPage):
		return ErrInvalidPage
	case errors.Is(err, storageopt.ErrInvalidLimit):
		return ErrInvalidLimit
	case errors.Is(err, storageopt.ErrPageOverflow):
		return ErrPageOverflow
	default:
		return err
	}
}
