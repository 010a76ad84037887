// Package service 把召回、过滤、重排组装成对外的三个查询操作：
//   - GetProductRecommendations：按商品读取预计算推荐
//   - GetUserRecommendations：按用户交互历史实时计算推荐
//   - ListProducts：商品列表的过滤、排序与分页
//
// 每个操作返回 (响应, error)。"合法但为空"的结果（无预计算、无交互历史、
// 交互商品都不在矩阵中）通过响应的 status / message 表达，不返回 error；
// error 总是 core.DomainError，调用方用 ErrorBody 转换为 {error, code}。
package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
	"github.com/rushteam/ocoprec/pkg/logging"
	"github.com/rushteam/ocoprec/pkg/metrics"
)

// 操作名，用于缓存 key、指标与日志。
const (
	OpProductRecommendations = "get_recommendations"
	OpUserRecommendations    = "get_user_recommendations"
	OpListProducts           = "get_products"
)

// Service 是查询层入口，可被多个 goroutine 并发使用。
type Service struct {
	store    *artifact.Store
	query    core.QueryDefaults
	cache    core.Store
	cacheTTL int
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	validate *validator.Validate
}

// Option 配置 Service。
type Option func(*Service)

// WithCache 启用结果缓存，ttl 单位秒，0 表示不过期。
func WithCache(cache core.Store, ttl int) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithQueryConfig 覆盖默认查询参数，零值字段保留默认值。
func WithQueryConfig(q core.QueryDefaults) Option {
	return func(s *Service) {
		if q.TopN > 0 {
			s.query.TopN = q.TopN
		}
		if q.PerPage > 0 {
			s.query.PerPage = q.PerPage
		}
		s.query.MaxTopN = q.MaxTopN
		s.query.MaxPerPage = q.MaxPerPage
		if q.PlaceholderImage != "" {
			s.query.PlaceholderImage = q.PlaceholderImage
		}
	}
}

// New 创建 Service。产物在第一次查询时加载。
func New(store *artifact.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		query:    core.DefaultQueryDefaults(),
		logger:   logging.With("service"),
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ErrorResponse 是失败时的响应体。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorBody 把 error 转换为响应体，非领域错误使用 INTERNAL_ERROR。
func ErrorBody(err error) ErrorResponse {
	if de := core.GetDomainError(err); de != nil {
		return ErrorResponse{Error: de.Error(), Code: de.Code}
	}
	return ErrorResponse{Error: err.Error(), Code: core.ErrorCodeInternalError}
}

// request 保存一次请求的公共状态。
type request struct {
	op     string
	id     string
	start  time.Time
	logger zerolog.Logger
}

func (s *Service) begin(op string) *request {
	id := uuid.NewString()
	return &request{
		op:     op,
		id:     id,
		start:  time.Now(),
		logger: s.logger.With().Str("request_id", id).Str("operation", op).Logger(),
	}
}

// finish 记录请求结果，status 为响应状态或错误码。
func (s *Service) finish(r *request, status string, err error) {
	if err != nil {
		status = core.ErrorCode(err)
		r.logger.Debug().Err(err).Str("code", status).Dur("elapsed", time.Since(r.start)).Msg("request failed")
	} else {
		r.logger.Debug().Str("status", status).Dur("elapsed", time.Since(r.start)).Msg("request done")
	}
	s.metrics.ObserveRequest(r.op, status, r.start)
}

// hook 在 debug 级别记录每个 Node 的输入输出数量。
func (r *request) hook() func(node pipeline.Node, in, out int) {
	return func(node pipeline.Node, in, out int) {
		r.logger.Debug().Str("node", node.Name()).Int("in", in).Int("out", out).Msg("node done")
	}
}

func (s *Service) topN(n *int) int {
	if n == nil {
		return s.query.TopN
	}
	if s.query.MaxTopN > 0 && *n > s.query.MaxTopN {
		return s.query.MaxTopN
	}
	return *n
}

func (s *Service) perPage(n *int) int {
	if n == nil {
		return s.query.PerPage
	}
	if s.query.MaxPerPage > 0 && *n > s.query.MaxPerPage {
		return s.query.MaxPerPage
	}
	return *n
}

func (s *Service) catalog(ctx context.Context) (*artifact.Catalog, error) {
	c, err := s.store.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.SetCatalogItems(c.Len())
	return c, nil
}

// cacheKey: ocoprec:<op>:<参数 JSON>
func cacheKey(op string, params any) string {
	b, err := json.Marshal(params)
	if err != nil {
		return ""
	}
	return "ocoprec:" + op + ":" + string(b)
}

// loadCached 读取缓存，命中时解码到 dst 并返回 true。缓存错误只记录日志。
func (s *Service) loadCached(ctx context.Context, r *request, key string, dst any) bool {
	if s.cache == nil || key == "" {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	switch {
	case core.IsStoreNotFound(err):
		s.metrics.CacheLookup("miss")
		return false
	case err != nil:
		s.metrics.CacheLookup("error")
		r.logger.Warn().Err(err).Str("cache", s.cache.Name()).Msg("cache get failed")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.metrics.CacheLookup("error")
		r.logger.Warn().Err(err).Msg("cache payload decode failed")
		return false
	}
	s.metrics.CacheLookup("hit")
	return true
}

func (s *Service) saveCached(ctx context.Context, r *request, key string, v any) {
	if s.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn().Err(err).Msg("cache payload encode failed")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		r.logger.Warn().Err(err).Str("cache", s.cache.Name()).Msg("cache set failed")
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误信息使用 JSON 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest 校验请求结构体，失败时返回 INVALID_INPUT。
func (s *Service) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "invalid request", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return core.InvalidInput(core.ModuleService, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
