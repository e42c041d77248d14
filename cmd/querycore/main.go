// Command querycore is the CLI front-end over the query-enhancement core:
// correct a query through the composite pipeline, expand it with synonyms,
// mine a new synonym dictionary from a corpus, or dump its index rules.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mattn/go-isatty"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	qconfig "github.com/newsgraph/querycore/pkg/querycore/config"
	"github.com/newsgraph/querycore/pkg/querycore/corpus"
	"github.com/newsgraph/querycore/pkg/querycore/indexclient"
	"github.com/newsgraph/querycore/pkg/querycore/miner"
	"github.com/newsgraph/querycore/pkg/querycore/synonym"
)

type globalOptions struct {
	ConfigPath string `long:"config" description:"Path to the application YAML config" required:"true"`
	LogPath    string `long:"log-file" description:"Optional log file path (rotated via lumberjack); defaults to stderr"`
}

var opts globalOptions

type correctCommand struct {
	Query string `long:"query" description:"Query to correct" required:"true"`
	// ResultCount, when >= 0, records this query's observed result count
	// against the configured history store so future corrections can learn
	// from it via the query-log corrector.
	ResultCount int `long:"result-count" description:"Result count to record for this query in the history store" default:"-1"`
}

func (c *correctCommand) Execute(_ []string) error {
	ctx := context.Background()
	logger := newLogger(opts.LogPath)
	comps, err := loadComponents(ctx, logger)
	if err != nil {
		return err
	}
	if comps.History != nil {
		defer comps.History.Close()
	}

	result := comps.Composite.TryCorrect(ctx, c.Query)
	fmt.Println(result.Corrected)
	for _, step := range result.Steps {
		fmt.Printf("  %s: %q -> %q (confidence %.2f)\n", step.Method, step.Before, step.After, step.Confidence)
	}

	if c.ResultCount >= 0 && comps.History != nil {
		if err := comps.History.Record(ctx, c.Query, c.ResultCount); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
	}
	return nil
}

type expandCommand struct {
	Query         string  `long:"query" description:"Query to expand with synonyms" required:"true"`
	MinConfidence float64 `long:"min-confidence" description:"Confidence threshold override" default:"-1"`
}

func (c *expandCommand) Execute(_ []string) error {
	ctx := context.Background()
	logger := newLogger(opts.LogPath)
	comps, err := loadComponents(ctx, logger)
	if err != nil {
		return err
	}
	if comps.History != nil {
		defer comps.History.Close()
	}
	fmt.Println(comps.Synonyms.ExpandQuery(c.Query, c.MinConfidence))
	return nil
}

type mineCommand struct {
	CorpusPath string `long:"corpus" description:"Path to a JSONL article corpus" required:"true"`
	OutputPath string `long:"output" description:"Where to write the mined synonym dictionary" required:"true"`
	Concurrency int    `long:"concurrency" description:"Pairwise-stage worker count" default:"1"`
}

func (c *mineCommand) Execute(_ []string) error {
	logger := newLogger(opts.LogPath)

	runID := ulid.Make().String()
	logger = logger.With("run_id", runID)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("mining run %s\n", runID)
	}

	f, err := os.Open(c.CorpusPath)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	articles, warnings := corpus.LoadJSONL(f)
	for _, w := range warnings {
		logger.Warnw("corpus parse warning", "error", w)
	}

	mineOpts := miner.DefaultOptions()
	mineOpts.Logger = logger
	mineOpts.Concurrency = c.Concurrency

	result, err := miner.Mine(context.Background(), articles, mineOpts)
	if err != nil {
		return fmt.Errorf("mine: %w", err)
	}

	provider := synonym.New(logger)
	for _, group := range result.Groups {
		members := make([]string, 0, len(group))
		for m := range group {
			members = append(members, m)
		}
		provider.AddGroup(members...)
	}

	if err := provider.Save(c.OutputPath); err != nil {
		return fmt.Errorf("save dictionary: %w", err)
	}

	logger.Infow("mining complete",
		"groups", len(result.Groups),
		"total_pairs", result.Statistics.TotalPairs,
		"articles_analyzed", result.Statistics.ArticlesAnalyzed)
	return nil
}

type rulesCommand struct {
	MinConfidence float64 `long:"min-confidence" description:"Confidence threshold override" default:"-1"`
}

func (c *rulesCommand) Execute(_ []string) error {
	ctx := context.Background()
	logger := newLogger(opts.LogPath)
	comps, err := loadComponents(ctx, logger)
	if err != nil {
		return err
	}
	if comps.History != nil {
		defer comps.History.Close()
	}

	rules := comps.Synonyms.BuildIndexRules(c.MinConfidence)

	client := comps.IndexClient
	if client == nil {
		client = indexclient.NewMemory()
	}
	if err := client.EmitRules(ctx, rules); err != nil {
		return fmt.Errorf("emit rules to index client: %w", err)
	}
	logger.Infow("index rules emitted", "count", len(rules))

	for _, rule := range rules {
		fmt.Println(rule)
	}
	return nil
}

func loadComponents(ctx context.Context, logger *zap.SugaredLogger) (*qconfig.Components, error) {
	appConfig, err := qconfig.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loader := &qconfig.Loader{
		Paths:    appConfig.Paths,
		Spell:    appConfig.Spell,
		Synonyms: appConfig.Synonyms,
		Logger:   logger,
	}
	return loader.Load(ctx)
}

func newLogger(logPath string) *zap.SugaredLogger {
	if logPath == "" {
		l, _ := zap.NewProduction()
		return l.Sugar()
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zap.InfoLevel)
	return zap.New(core).Sugar()
}

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.AddCommand("correct", "Run a query through the composite spell corrector", "", &correctCommand{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := parser.AddCommand("expand", "Expand a query with synonyms", "", &expandCommand{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := parser.AddCommand("mine", "Mine a synonym dictionary from a corpus", "", &mineCommand{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, err := parser.AddCommand("rules", "Emit index rules from the synonym dictionary", "", &rulesCommand{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
