// Package main provides the CLI entrypoint for signglove.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/signglove/internal/config"
	"github.com/verte-zerg/signglove/internal/console"
	"github.com/verte-zerg/signglove/internal/dataset"
	"github.com/verte-zerg/signglove/internal/decoder"
	"github.com/verte-zerg/signglove/internal/inference"
	"github.com/verte-zerg/signglove/internal/model"
	"github.com/verte-zerg/signglove/internal/report"
	"github.com/verte-zerg/signglove/internal/speech"
	"github.com/verte-zerg/signglove/internal/store"
	"github.com/verte-zerg/signglove/internal/trainer"
	"github.com/verte-zerg/signglove/internal/tui"
	"github.com/verte-zerg/signglove/internal/vocab"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

var (
	verbose bool

	trainExamples int
	trainNoise    int
	trainTrees    int
	trainSeed     int64
	trainFormat   string

	wordsPrefix string
	historyLast int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "signglove",
		Short:         "Glove gesture to letter classifier and word decoder",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runMenuCmd,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newSpellCmd())
	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// settings is the resolved configuration for one invocation.
type settings struct {
	train     model.TrainConfig
	store     model.StoreConfig
	speech    model.SpeechConfig
	vocabPath string
}

func loadSettings() (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	s := settings{
		train: trainer.DefaultConfig(),
		store: model.StoreConfig{
			Backend:   config.BackendSQLite,
			ModelPath: config.DefaultModelPath(),
			DBPath:    config.DefaultDBPath(),
		},
		speech: model.SpeechConfig{Enabled: true, Synth: speech.DefaultSynth, Play: speech.DefaultPlay},
	}
	t := fileCfg.Train
	setValue(&s.train.ExamplesPerClass, t.Examples)
	setValue(&s.train.Noise, t.Noise)
	setValue(&s.train.Trees, t.Trees)
	setValue(&s.train.TestFraction, t.TestFraction)
	setValue(&s.train.SplitSeed, t.SplitSeed)
	setValue(&s.train.ForestSeed, t.ForestSeed)
	if t.DataSeed != nil {
		seed := *t.DataSeed
		s.train.DataSeed = &seed
	}
	setValue(&s.store.Backend, fileCfg.Store.Backend)
	setValue(&s.store.ModelPath, fileCfg.Store.ModelPath)
	setValue(&s.speech.Enabled, fileCfg.Speech.Enabled)
	setValue(&s.speech.Synth, fileCfg.Speech.Synth)
	setValue(&s.speech.Play, fileCfg.Speech.Play)
	setValue(&s.vocabPath, fileCfg.Vocab.Path)
	return s, nil
}

func setValue[T any](target *T, value *T) {
	if value == nil {
		return
	}
	*target = *value
}

// app holds the collaborators shared by commands.
type app struct {
	settings settings
	log      *logrus.Logger
	db       *store.Store
	repo     store.Repository
	vocab    *vocab.Vocabulary
	notifier speech.Notifier
}

// openApp wires the collaborators for one command. The SQLite database is
// opened only when withStore is set.
func openApp(s settings, withStore bool) (*app, error) {
	log := newLogger()
	a := &app{settings: s, log: log, notifier: speech.Nop{}}
	if withStore {
		db, err := store.Open(s.store.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		a.db, a.repo = db, db
		if s.store.Backend == config.BackendFile {
			a.repo = store.NewFile(s.store.ModelPath)
		}
		log.WithFields(logrus.Fields{"backend": s.store.Backend, "db": s.store.DBPath}).Debug("store opened")
	}

	a.vocab = vocab.Default()
	if s.vocabPath != "" {
		v, err := vocab.Load(s.vocabPath)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to load vocabulary: %w", err)
		}
		a.vocab = v
	}
	if s.speech.Enabled {
		a.notifier = speech.NewCommandNotifier(s.speech.Synth, s.speech.Play)
	}
	return a, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close db")
	}
}

func (a *app) trainer() *trainer.Trainer {
	return trainer.New(a.repo, a.db, a.settings.train, a.log)
}

func withApp(withStore bool, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		if cmd.Name() == "train" {
			applyTrainFlags(cmd, &s.train)
			if err := validateTrainConfig(s.train); err != nil {
				return err
			}
		}
		a, err := openApp(s, withStore)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, a, args)
	}
}

func runMenuCmd(cmd *cobra.Command, args []string) error {
	return withApp(true, func(cmd *cobra.Command, a *app, _ []string) error {
		engine := inference.NewEngine(a.repo)
		menu := console.NewMenu(cmd.InOrStdin(), cmd.OutOrStdout(), a.trainer(), engine, a.vocab, a.notifier, a.log)
		return menu.Run(cmd.Context())
	})(cmd, args)
}

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Generate a dataset, train the classifier and save it",
		Args:  cobra.NoArgs,
		RunE:  withApp(true, runTrainCmd),
	}
	cmd.Flags().IntVar(&trainExamples, "examples", trainer.DefaultExamplesPerClass, "examples per letter")
	cmd.Flags().IntVar(&trainNoise, "noise", trainer.DefaultNoise, "noise radius added to each finger value")
	cmd.Flags().IntVar(&trainTrees, "trees", trainer.DefaultConfig().Trees, "number of trees in the forest")
	cmd.Flags().Int64Var(&trainSeed, "seed", 0, "seed for dataset generation (default: random)")
	cmd.Flags().StringVar(&trainFormat, "format", formatText, "report format: text or yaml")
	return cmd
}

func applyTrainFlags(cmd *cobra.Command, cfg *model.TrainConfig) {
	if cmd.Flags().Changed("examples") {
		cfg.ExamplesPerClass = trainExamples
	}
	if cmd.Flags().Changed("noise") {
		cfg.Noise = trainNoise
	}
	if cmd.Flags().Changed("trees") {
		cfg.Trees = trainTrees
	}
	if cmd.Flags().Changed("seed") {
		seed := trainSeed
		cfg.DataSeed = &seed
	}
}

func validateTrainConfig(cfg model.TrainConfig) error {
	if cfg.ExamplesPerClass <= 0 {
		return fmt.Errorf("--examples must be > 0")
	}
	if cfg.Noise < 0 || cfg.Noise > dataset.MaxNoise {
		return fmt.Errorf("--noise must be between 0 and %d", dataset.MaxNoise)
	}
	if cfg.Trees <= 0 {
		return fmt.Errorf("--trees must be > 0")
	}
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		return fmt.Errorf("train.test-fraction must be between 0 and 1")
	}
	if trainFormat != formatText && trainFormat != formatYAML {
		return fmt.Errorf("--format must be %q or %q", formatText, formatYAML)
	}
	return nil
}

func runTrainCmd(cmd *cobra.Command, a *app, _ []string) error {
	res, err := a.trainer().Run(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if trainFormat == formatYAML {
		return res.Evaluation.Report.WriteYAML(out)
	}
	if err := res.Evaluation.Report.Render(out); err != nil {
		return err
	}
	if weak := res.Evaluation.Report.WeakestClasses(5); len(weak) > 0 {
		fmt.Fprintf(out, "Weakest letters: %s\n", strings.Join(weak, " "))
	}
	fmt.Fprintf(out, "Model trained and saved as '%s' (run %s)\n", store.ModelName, res.Run.ID)
	return nil
}

func newPredictCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "predict V1 V2 V3 V4 V5",
		Short: "Predict the letter for one glove reading",
		RunE:  withApp(true, runPredictCmd),
	}
}

func runPredictCmd(cmd *cobra.Command, a *app, args []string) error {
	values, err := console.ParseGesture(strings.Join(args, " "))
	if err != nil {
		return err
	}
	letter, err := inference.NewEngine(a.repo).Predict(cmd.Context(), values)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), letter)
	return err
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode LETTERS...",
		Short: "Decode a letter sequence into a word",
		RunE:  withApp(false, runDecodeCmd),
	}
}

func runDecodeCmd(cmd *cobra.Command, a *app, args []string) error {
	var letters []string
	for _, arg := range args {
		for _, r := range strings.ToUpper(arg) {
			letters = append(letters, string(r))
		}
	}
	res := decoder.Decode(letters, a.vocab)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), res.String()); err != nil {
		return err
	}
	if res.Recognized {
		speech.Announce(cmd.Context(), a.notifier, res.Word, a.log)
	}
	return nil
}

func newSpellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spell",
		Short: "Spell words interactively in a terminal UI",
		Args:  cobra.NoArgs,
		RunE:  withApp(true, runSpellCmd),
	}
}

func runSpellCmd(cmd *cobra.Command, a *app, _ []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("spell requires an interactive terminal")
	}
	// Log output would corrupt the alternate screen.
	a.log.SetOutput(io.Discard)
	m := tui.NewModel(cmd.Context(), inference.NewEngine(a.repo), a.vocab, a.notifier, a.log)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newWordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "List vocabulary words",
		Args:  cobra.NoArgs,
		RunE:  withApp(false, runWordsCmd),
	}
	cmd.Flags().StringVar(&wordsPrefix, "prefix", "", "only words starting with this prefix")
	return cmd
}

func runWordsCmd(cmd *cobra.Command, a *app, _ []string) error {
	words := a.vocab.WithPrefix(strings.ToUpper(strings.TrimSpace(wordsPrefix)))
	if len(words) == 0 {
		return fmt.Errorf("no words start with %q", wordsPrefix)
	}
	for _, w := range words {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), w); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past training runs",
		Args:  cobra.NoArgs,
		RunE:  withApp(true, runHistoryCmd),
	}
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, a *app, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	runs, err := a.db.ListRuns(cmd.Context(), historyLast)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return report.RenderHistory(cmd.OutOrStdout(), runs)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	d := trainer.DefaultConfig()
	return fmt.Sprintf(`# signglove configuration
# Uncomment a value to enable it. CLI flags override config values.

[train]
# examples = %d           # Examples generated per letter
# noise = %d              # Max absolute noise added to each finger value
# trees = %d              # Trees in the forest
# test-fraction = %.1f    # Share of examples held out for the report
# split-seed = %d         # Seed for the train/test split
# forest-seed = %d        # Seed for bootstrap and feature sampling
# data-seed = 1           # Fixed dataset seed (default: random each run)

[store]
# backend = %q            # "sqlite" or "file"
# model-path = %q

[speech]
# enabled = true          # Set false to stay silent
# synth = %q
# play = %q

[vocab]
# path = "words.txt"      # One word per line; replaces the built-in list
`,
		d.ExamplesPerClass,
		d.Noise,
		d.Trees,
		d.TestFraction,
		d.SplitSeed,
		d.ForestSeed,
		config.BackendSQLite,
		config.DefaultModelPath(),
		speech.DefaultSynth,
		speech.DefaultPlay,
	)
}
