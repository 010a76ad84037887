// Package artifact 加载并持有离线训练管线产出的只读产物：
// 商品元数据、预计算推荐、相似度矩阵、行号映射，以及可选的商品表。
//
// 产物在首次使用时加载一次，之后作为进程内的不可变状态被并发读取，不需要加锁。
package artifact

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/logging"
)

// Store 持有全部产物。每类产物的加载错误单独记录，
// 只有需要该产物的查询才会失败。
type Store struct {
	cfg    Config
	logger zerolog.Logger

	mu     sync.Mutex
	loaded atomic.Bool

	catalog    *Catalog
	catalogErr error

	precomputed    *Precomputed
	precomputedErr error

	similarity    *Similarity
	similarityErr error

	table *Table
}

// Option 配置 Store。
type Option func(*Store)

// WithLogger 设置加载日志使用的 logger。
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore 创建按 cfg 从磁盘加载的 Store，此时不读取任何文件。
func NewStore(cfg Config, opts ...Option) *Store {
	s := &Store{
		cfg:    cfg.withDefaults(),
		logger: logging.With("artifact"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreFromData 用内存中的产物构建已加载的 Store。
// 为 nil 的产物视为缺失：catalog/precomputed/similarity 的访问返回 ARTIFACT_NOT_FOUND，table 为 nil 则回退到合成表。
func NewStoreFromData(catalog *Catalog, precomputed *Precomputed, similarity *Similarity, table *Table) *Store {
	s := &Store{logger: zerolog.Nop()}
	s.catalog, s.catalogErr = catalog, missingIfNil(catalog == nil, "metadata")
	s.precomputed, s.precomputedErr = precomputed, missingIfNil(precomputed == nil, "precomputed recommendations")
	s.similarity, s.similarityErr = similarity, missingIfNil(similarity == nil, "similarity matrix")
	s.table = table
	s.loaded.Store(true)
	return s
}

func missingIfNil(isNil bool, kind string) error {
	if !isNil {
		return nil
	}
	return core.NewDomainError(core.ModuleArtifact, core.ErrorCodeArtifactNotFound, kind+" is not available")
}

// EnsureLoaded 保证产物至多成功加载一次，可并发调用。
// 只有元数据缺失时返回错误；其余产物的错误在对应的访问方法中返回。
// 元数据加载失败或 ctx 被取消时不标记为已加载，下次调用会重试。
func (s *Store) EnsureLoaded(ctx context.Context) error {
	if s.loaded.Load() {
		return s.catalogErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded.Load() {
		return s.catalogErr
	}

	var (
		catalog     *Catalog
		precomputed *Precomputed
		similarity  *Similarity
		table       *Table
		errs        [4]error
	)
	// 各 goroutine 只写自己的槽位，错误不中断其他产物的加载
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		catalog, errs[0] = LoadCatalog(s.cfg.MetadataPath())
		return nil
	})
	g.Go(func() error {
		precomputed, errs[1] = LoadPrecomputed(s.cfg.PrecomputedPath())
		return nil
	})
	g.Go(func() error {
		similarity, errs[2] = s.loadSimilarity(gctx)
		return nil
	})
	g.Go(func() error {
		table, errs[3] = LoadTable(s.cfg.TablePath())
		return nil
	})
	_ = g.Wait()

	s.catalog, s.catalogErr = catalog, errs[0]
	s.precomputed, s.precomputedErr = precomputed, errs[1]
	s.similarity, s.similarityErr = similarity, errs[2]
	s.table = table
	s.logLoad(errs)

	if errs[0] == nil && ctx.Err() == nil {
		s.loaded.Store(true)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.catalogErr
}

func (s *Store) loadSimilarity(ctx context.Context) (*Similarity, error) {
	// 矩阵与映射相互独立，但必须同时可用
	var (
		matrix *mat.Dense
		idx    *IndexMap
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		matrix, err = LoadMatrix(s.cfg.MatrixPath())
		return err
	})
	g.Go(func() (err error) {
		idx, err = LoadIndexMap(s.cfg.IndexPath())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sim, dropped, err := NewSimilarity(matrix, idx)
	if err != nil {
		return nil, invalid("similarity matrix", s.cfg.MatrixPath(), err)
	}
	if len(dropped) > 0 {
		rows, _ := sim.Dims()
		s.logger.Warn().
			Int("dropped", len(dropped)).
			Int("matrix_rows", rows).
			Str("first", dropped[0].String()).
			Msg("index map entries out of matrix range were dropped")
	}
	return sim, nil
}

func (s *Store) logLoad(errs [4]error) {
	names := [4]string{"metadata", "precomputed", "similarity", "table"}
	for i, err := range errs {
		if err == nil {
			continue
		}
		ev := s.logger.Error()
		if i == 3 {
			// 商品表是可选的
			ev = s.logger.Warn()
		}
		ev.Err(err).Str("artifact", names[i]).Msg("artifact not loaded")
	}
	ev := s.logger.Info().
		Int("products", s.catalog.Len()).
		Int("precomputed", s.precomputed.Len()).
		Int("table_rows", s.table.Len())
	if s.similarity != nil {
		rows, cols := s.similarity.Dims()
		ev = ev.Int("matrix_rows", rows).Int("matrix_cols", cols).Int("index_entries", s.similarity.IndexMap().Len())
	}
	ev.Msg("artifacts loaded")
}

// Catalog 返回商品元数据。
func (s *Store) Catalog(ctx context.Context) (*Catalog, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.catalog, nil
}

// Precomputed 返回预计算推荐，文件缺失时返回 ARTIFACT_NOT_FOUND。
func (s *Store) Precomputed(ctx context.Context) (*Precomputed, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.precomputedErr != nil {
		return nil, s.precomputedErr
	}
	return s.precomputed, nil
}

// Similarity 返回相似度矩阵与行号映射，任一文件缺失时返回 ARTIFACT_NOT_FOUND。
func (s *Store) Similarity(ctx context.Context) (*Similarity, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.similarityErr != nil {
		return nil, s.similarityErr
	}
	return s.similarity, nil
}

// Table 返回 CSV 商品表，不存在时返回 nil（不是错误）。
func (s *Store) Table(ctx context.Context) (*Table, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.table, nil
}

// ProductTable 返回用于列表查询的表：优先 CSV，缺失时由元数据合成。
func (s *Store) ProductTable(ctx context.Context) (*Table, error) {
	if err := s.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.table != nil {
		return s.table, nil
	}
	return s.catalog.Table(), nil
}
