package book

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bookcatalog/internal/domain/audit"
	"github.com/xiebiao/bookcatalog/internal/domain/book"
	"github.com/xiebiao/bookcatalog/pkg/logger"
	"github.com/xiebiao/bookcatalog/pkg/metrics"
	"github.com/xiebiao/bookcatalog/pkg/tracing"
)

const tracerName = "bookcatalog/catalog"

// Cache 图书详情缓存，未命中返回(nil, nil)
type Cache interface {
	Get(ctx context.Context, id string) (*book.Book, error)
	Set(ctx context.Context, b *book.Book) error
	Delete(ctx context.Context, id string) error
}

// Options CatalogService可选参数
type Options struct {
	// AuditTimeout 审计写入超时，<=0时使用3秒
	AuditTimeout time.Duration
	// Cache 为nil时不缓存
	Cache Cache
	// InvalidateDelay 写后第二次删除缓存的延迟，<=0时使用500毫秒
	// 覆盖写入前读到旧数据、在第一次删除之后才回填的并发读
	InvalidateDelay time.Duration
}

// CatalogService 图书目录用例
// 查询: QueryBuilder → Repository.List
// 写入: Repository → 成功后记录审计事件
type CatalogService struct {
	repo         book.Repository
	auditLog     audit.Log
	clock        *audit.Clock
	cache        Cache
	auditTimeout time.Duration
	delay        time.Duration
}

// NewCatalogService 创建图书目录用例
func NewCatalogService(repo book.Repository, auditLog audit.Log, opts Options) *CatalogService {
	if opts.AuditTimeout <= 0 {
		opts.AuditTimeout = 3 * time.Second
	}
	if opts.InvalidateDelay <= 0 {
		opts.InvalidateDelay = 500 * time.Millisecond
	}
	return &CatalogService{
		repo:         repo,
		auditLog:     auditLog,
		clock:        audit.NewClock(),
		cache:        opts.Cache,
		auditTimeout: opts.AuditTimeout,
		delay:        opts.InvalidateDelay,
	}
}

// ListBooks 按检索参数查询图书，参数无法解析时按未传处理
func (s *CatalogService) ListBooks(ctx context.Context, params book.SearchParams) (books []*book.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogService.ListBooks",
		attribute.String("keywords", params.Keywords),
		attribute.String("sort_by", params.SortBy),
	)
	defer func() { tracing.End(span, err) }()

	metrics.InitMetrics()
	start := time.Now()
	defer func() { metrics.CatalogListDuration.Observe(time.Since(start).Seconds()) }()

	books, err = s.repo.List(ctx, book.BuildQuery(params))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("result_count", len(books)))
	return books, nil
}

// GetBook 先查缓存，未命中再查库并回填
func (s *CatalogService) GetBook(ctx context.Context, id string) (b *book.Book, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogService.GetBook", attribute.String("book_id", id))
	defer func() { tracing.End(span, err) }()

	if s.cache != nil {
		cached, cerr := s.cache.Get(ctx, id)
		switch {
		case cerr != nil:
			metrics.IncCache("error")
			logger.FromContext(ctx).Warn("book cache get failed", zap.String("book_id", id), zap.Error(cerr))
		case cached != nil:
			metrics.IncCache("hit")
			return cached, nil
		default:
			metrics.IncCache("miss")
		}
	}

	b, err = s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cerr := s.cache.Set(ctx, b); cerr != nil {
			logger.FromContext(ctx).Warn("book cache set failed", zap.String("book_id", id), zap.Error(cerr))
		}
	}
	return b, nil
}

// AddBook 新增图书，返回存储生成的ID
func (s *CatalogService) AddBook(ctx context.Context, actor audit.Actor, b *book.Book) (id string, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogService.AddBook", attribute.String("title", b.Title))
	defer func() { tracing.End(span, err) }()

	normalizeBook(b)
	id, err = s.repo.Insert(ctx, b)
	if err != nil {
		metrics.IncMutation(string(audit.OpCreate), mutationResult(err))
		if isNotModified(err) {
			return "", book.ErrBookNotModified.WithMessage(fmt.Sprintf("Book %s not added", b.Title))
		}
		return "", err
	}
	b.ID = id

	metrics.IncMutation(string(audit.OpCreate), "success")
	s.record(ctx, audit.OpCreate, id, actor)
	return id, nil
}

// UpdateBook 部分更新；没有记录被修改时返回ErrBookNotModified
func (s *CatalogService) UpdateBook(ctx context.Context, actor audit.Actor, id string, patch book.Patch) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogService.UpdateBook", attribute.String("book_id", id))
	defer func() { tracing.End(span, err) }()

	if uuid.Validate(id) != nil {
		return book.NotFound(id)
	}

	normalizePatch(&patch)
	n, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		metrics.IncMutation(string(audit.OpUpdate), mutationResult(err))
		return err
	}
	if n == 0 {
		metrics.IncMutation(string(audit.OpUpdate), "not_modified")
		return book.ErrBookNotModified.WithMessage(fmt.Sprintf("Book %s not updated", id))
	}

	metrics.IncMutation(string(audit.OpUpdate), "success")
	s.invalidate(ctx, id)
	s.record(ctx, audit.OpUpdate, id, actor)
	return nil
}

// DeleteBook 物理删除；记录不存在时返回ErrBookNotModified
func (s *CatalogService) DeleteBook(ctx context.Context, actor audit.Actor, id string) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CatalogService.DeleteBook", attribute.String("book_id", id))
	defer func() { tracing.End(span, err) }()

	if uuid.Validate(id) != nil {
		return book.NotFound(id)
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		metrics.IncMutation(string(audit.OpDelete), mutationResult(err))
		return err
	}
	if n == 0 {
		metrics.IncMutation(string(audit.OpDelete), "not_modified")
		return book.ErrBookNotModified.WithMessage(fmt.Sprintf("Book %s not deleted", id))
	}

	metrics.IncMutation(string(audit.OpDelete), "success")
	s.invalidate(ctx, id)
	s.record(ctx, audit.OpDelete, id, actor)
	return nil
}

// record 写审计事件
// 不随请求取消，失败只记日志和指标，不回滚已完成的写操作
func (s *CatalogService) record(ctx context.Context, op audit.Operation, targetID string, actor audit.Actor) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.auditTimeout)
	defer cancel()

	e := s.clock.NewEvent(op, audit.CollectionBook, targetID, actor)
	err := s.auditLog.Record(ctx, e)
	metrics.IncAuditWrite(err == nil)
	if err != nil {
		logger.FromContext(ctx).Error("audit write failed",
			zap.String("op", string(op)),
			zap.String("target_id", targetID),
			zap.String("actor", actor.UserID),
			zap.Error(err),
		)
	}
}

// invalidate 延迟双删：立即删除一次，delay后再删一次
func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	s.deleteCached(ctx, id)

	ctx = context.WithoutCancel(ctx)
	time.AfterFunc(s.delay, func() {
		ctx, cancel := context.WithTimeout(ctx, s.auditTimeout)
		defer cancel()
		s.deleteCached(ctx, id)
	})
}

func (s *CatalogService) deleteCached(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.FromContext(ctx).Warn("book cache invalidate failed", zap.String("book_id", id), zap.Error(err))
	}
}

func normalizeBook(b *book.Book) {
	b.ISBN = strings.TrimSpace(b.ISBN)
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = book.Genre(strings.TrimSpace(string(b.Genre)))
	b.Description = strings.TrimSpace(b.Description)
}

func normalizePatch(p *book.Patch) {
	for _, f := range []*string{p.ISBN, p.Title, p.Author, p.Description} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if p.Genre != nil {
		g := book.Genre(strings.TrimSpace(string(*p.Genre)))
		p.Genre = &g
	}
}
