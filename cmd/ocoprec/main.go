// Command ocoprec 是推荐查询层的命令行入口。
//
// 每次调用执行一个查询，在标准输出写一行 JSON；日志写到标准错误。
//
//	ocoprec [--config path] <command> [flags]
//
// 命令：
//
//	get_recommendations       --product_id ID [--top_n N]
//	get_user_recommendations  --user_id ID [--interacted_product_ids '[1,"abc"]'] [--top_n N]
//	get_products              [--page N] [--per_page N] [--category S] [--province S]
//	                          [--min_price X] [--max_price X] [--sort_by KEY] [--keyword S] [--filter EXPR]
//	config                    输出生效的配置（YAML）
//
// 业务错误以 {"error": ..., "code": ...} 输出，退出码为 0；参数错误退出码为 2。
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/config"
	_ "github.com/rushteam/ocoprec/config/builders"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/conv"
	"github.com/rushteam/ocoprec/pkg/logging"
	"github.com/rushteam/ocoprec/service"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError 表示命令行参数错误。
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// run 解析参数并执行一个命令，返回进程退出码。
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("ocoprec", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to YAML config file (default $"+config.ConfigPathEnvVar+")")
	if err := global.Parse(args); err != nil {
		return writeUsage(stdout, err)
	}
	rest := global.Args()
	if len(rest) == 0 {
		return writeUsage(stdout, usagef("missing command (get_recommendations, get_user_recommendations, get_products, config)"))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		writeJSON(stdout, service.ErrorResponse{Error: err.Error(), Code: core.ErrorCodeInvalidInput})
		return exitError
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: stderr})
	logger := logging.With("cli")

	command, cmdArgs := rest[0], rest[1:]
	if command == "config" {
		out, err := config.Dump(cfg)
		if err != nil {
			writeJSON(stdout, service.ErrorBody(err))
			return exitError
		}
		_, _ = stdout.Write(out)
		return exitOK
	}

	handler, ok := commands[command]
	if !ok {
		return writeUsage(stdout, usagef("unknown command %q", command))
	}

	opts := []service.Option{
		service.WithQueryConfig(cfg.Query.Defaults()),
		service.WithLogger(logging.With("service")),
	}
	cache, err := config.OpenCache(ctx, cfg.Cache)
	if err != nil {
		// 缓存不可用时照常查询
		logger.Warn().Err(err).Str("backend", cfg.Cache.Backend).Msg("result cache disabled")
	} else if cache != nil {
		defer cache.Close()
		opts = append(opts, service.WithCache(cache, cfg.Cache.TTL))
	}

	store := artifact.NewStore(cfg.Artifacts, artifact.WithLogger(logging.With("artifact")))
	svc := service.New(store, opts...)

	resp, err := handler(ctx, svc, cmdArgs, stderr)
	var uerr *usageError
	switch {
	case errors.As(err, &uerr):
		return writeUsage(stdout, err)
	case errors.Is(err, flag.ErrHelp):
		return exitUsage
	case err != nil:
		logger.Debug().Err(err).Str("command", command).Msg("command failed")
		writeJSON(stdout, service.ErrorBody(err))
		return exitOK
	}
	writeJSON(stdout, resp)
	return exitOK
}

type handlerFunc func(ctx context.Context, svc *service.Service, args []string, stderr io.Writer) (any, error)

var commands = map[string]handlerFunc{
	service.OpProductRecommendations: runProductRecommendations,
	service.OpUserRecommendations:    runUserRecommendations,
	service.OpListProducts:           runListProducts,
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// parse 解析子命令参数，多余的位置参数视为错误。
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

// intFlag 记录整数参数是否被显式设置。
type intFlag struct {
	value *int
}

func (f *intFlag) String() string {
	if f.value == nil {
		return ""
	}
	return fmt.Sprint(*f.value)
}

func (f *intFlag) Set(s string) error {
	n, ok := conv.ParseInt(s)
	if !ok {
		return fmt.Errorf("invalid integer %q", s)
	}
	f.value = &n
	return nil
}

// floatFlag 记录浮点参数是否被显式设置。
type floatFlag struct {
	value *float64
}

func (f *floatFlag) String() string {
	if f.value == nil {
		return ""
	}
	return fmt.Sprint(*f.value)
}

func (f *floatFlag) Set(s string) error {
	v, ok := conv.ParseFloat(s)
	if !ok {
		return fmt.Errorf("invalid number %q", s)
	}
	f.value = &v
	return nil
}

func runProductRecommendations(ctx context.Context, svc *service.Service, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet(service.OpProductRecommendations, stderr)
	productID := fs.String("product_id", "", "product id (required)")
	var topN intFlag
	fs.Var(&topN, "top_n", "number of recommendations")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *productID == "" {
		return nil, usagef("%s: --product_id is required", fs.Name())
	}
	return svc.GetProductRecommendations(ctx, service.ProductRecommendationsRequest{
		ProductID: *productID,
		TopN:      topN.value,
	})
}

func runUserRecommendations(ctx context.Context, svc *service.Service, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet(service.OpUserRecommendations, stderr)
	userID := fs.String("user_id", "", "user id (required)")
	interacted := fs.String("interacted_product_ids", "[]", "JSON list of interacted product ids")
	var topN intFlag
	fs.Var(&topN, "top_n", "number of recommendations")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	if *userID == "" {
		return nil, usagef("%s: --user_id is required", fs.Name())
	}
	ids, err := decodeIDList(*interacted)
	if err != nil {
		return nil, err
	}
	return svc.GetUserRecommendations(ctx, service.UserRecommendationsRequest{
		UserID:               *userID,
		InteractedProductIDs: ids,
		TopN:                 topN.value,
	})
}

// decodeIDList 解析 JSON 数组，元素可以是数字或字符串。数字保留为 json.Number 以免丢失精度。
func decodeIDList(s string) ([]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput,
			"interacted_product_ids must be a JSON list", err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, core.InvalidInput(core.ModuleService, "interacted_product_ids must be a JSON list")
	}
	return list, nil
}

func runListProducts(ctx context.Context, svc *service.Service, args []string, stderr io.Writer) (any, error) {
	fs := newFlagSet(service.OpListProducts, stderr)
	var (
		page, perPage      intFlag
		minPrice, maxPrice floatFlag
	)
	fs.Var(&page, "page", "page number, starting at 1")
	fs.Var(&perPage, "per_page", "page size")
	fs.Var(&minPrice, "min_price", "minimum price (inclusive)")
	fs.Var(&maxPrice, "max_price", "maximum price (inclusive)")
	category := fs.String("category", "", "category substring, case-insensitive")
	province := fs.String("province", "", "province substring, case-insensitive")
	sortBy := fs.String("sort_by", "", "popular, newest, priceAsc or priceDesc")
	keyword := fs.String("keyword", "", "name substring, case-insensitive")
	filterExpr := fs.String("filter", "", "CEL filter expression over product fields")
	if err := parse(fs, args); err != nil {
		return nil, err
	}
	return svc.ListProducts(ctx, service.ListProductsRequest{
		Page:     page.value,
		PerPage:  perPage.value,
		Category: *category,
		Province: *province,
		MinPrice: minPrice.value,
		MaxPrice: maxPrice.value,
		SortBy:   *sortBy,
		Keyword:  *keyword,
		Filter:   *filterExpr,
	})
}

func writeUsage(stdout io.Writer, err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return exitUsage
	}
	writeJSON(stdout, service.ErrorResponse{Error: err.Error(), Code: core.ErrorCodeInvalidInput})
	return exitUsage
}

// writeJSON 写一行 JSON。
func writeJSON(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(service.ErrorResponse{Error: err.Error(), Code: core.ErrorCodeInternalError})
	}
	data = append(data, '\n')
	_, _ = w.Write(data)
}
