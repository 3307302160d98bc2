package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/fpang/idea-studio/internal/audit"
	"github.com/fpang/idea-studio/internal/auth"
	"github.com/fpang/idea-studio/internal/chat"
	"github.com/fpang/idea-studio/internal/config"
	"github.com/fpang/idea-studio/internal/export"
	"github.com/fpang/idea-studio/internal/logging"
	"github.com/fpang/idea-studio/internal/metrics"
	"github.com/fpang/idea-studio/internal/narration"
	"github.com/fpang/idea-studio/internal/store"
	"github.com/fpang/idea-studio/internal/studio"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Options tunes how a Session is opened.
type Options struct {
	// SkipValidation skips the API key probe call.
	SkipValidation bool
	// Dialog opens a native save dialog on export.
	Dialog bool
	// NarrationDir receives narration WAV files.
	NarrationDir string
	// Narrated receives the path of each narration file written.
	Narrated func(path string)
}

// Session is a fully wired studio plus the resources it owns.
type Session struct {
	Config *config.Config
	Studio *studio.Studio
	Chat   *chat.Client
	Player *narration.Player
	Voice  narration.Voice

	store store.Store
}

// Open wires configuration into a studio: API key, Gemini client, snapshot
// store, export destination, audit publisher and narration player. The last
// session is restored before returning.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Session, error) {
	start := time.Now()

	if cfg.Metrics {
		metrics.SetOutput(os.Stdout)
	} else {
		metrics.SetOutput(io.Discard)
	}

	var awsCfg *aws.Config
	if cfg.NeedsAWS() {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		awsCfg = &loaded
	}

	var ssmClient auth.ParameterGetter
	if awsCfg != nil && cfg.APIKey == "" {
		ssmClient = ssm.NewFromConfig(*awsCfg)
	}
	client, err := InitGeminiClient(ctx, ssmClient, cfg.SSMParam)
	if err != nil {
		return nil, err
	}
	chatClient := chat.NewClient(client.Models, chat.Options{
		TextModel:  cfg.Models.Text,
		ImageModel: cfg.Models.Image,
		TTSModel:   cfg.Models.TTS,
	})
	if !opts.SkipValidation {
		if err := auth.ValidateAPIKey(ctx, client.Models, cfg.Models.Text); err != nil {
			return nil, err
		}
		log.Info().Msg("API key validation complete - ready for operations")
	}

	var dynamoClient store.DynamoAPI
	if cfg.Store.Backend == config.StoreDynamo {
		dynamoClient = dynamodb.NewFromConfig(*awsCfg)
	}
	st, err := OpenStore(cfg, dynamoClient)
	if err != nil {
		return nil, err
	}

	var s3Client *s3.Client
	if cfg.Export.Bucket != "" {
		s3Client = s3.NewFromConfig(*awsCfg)
	}
	dest := Destination(cfg, s3Client, opts.Dialog)

	var publisher audit.Publisher = audit.Nop{}
	if cfg.AuditBus != "" {
		publisher = audit.NewEventBridgePublisher(eventbridge.NewFromConfig(*awsCfg), cfg.AuditBus)
	}

	voice, _ := narration.SelectVoice(narration.Voices, cfg.VoiceLocale)
	narrationDir := opts.NarrationDir
	if narrationDir == "" {
		narrationDir = cfg.Export.Dir
	}
	player := narration.NewPlayer(chatClient, &narration.WAVSink{Dir: narrationDir, Written: opts.Narrated}, voice, nil)

	sess := &Session{
		Config: cfg,
		Chat:   chatClient,
		Player: player,
		Voice:  voice,
		store:  st,
		Studio: studio.New(chatClient, studio.Options{
			Store:       st,
			Player:      player,
			Publisher:   publisher,
			Destination: dest,
		}),
	}
	if err := sess.Studio.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to restore last session")
	}

	logging.NewStartupLogger("idea-studio").
		Version(Version).
		Model("text", chatClient.TextModel()).
		Model("image", cfg.Models.Image).
		Model("tts", cfg.Models.TTS).
		Backend("store", storeTarget(cfg)).
		SSMParam("api_key", cfg.SSMParam).
		Feature("compression", cfg.Store.Compress).
		Feature("s3_export", cfg.Export.Bucket != "").
		Feature("audit", cfg.AuditBus != "").
		Feature("metrics", cfg.Metrics).
		Config("voice", voice.Name+" ("+voice.Locale+")").
		InitDuration(time.Since(start)).
		Log()

	return sess, nil
}

// Close waits for background work and releases the store.
func (s *Session) Close() error {
	s.Player.Wait()
	s.Studio.Wait()
	return s.store.Close()
}

// InitGeminiClient resolves the API key and creates a Gemini client.
func InitGeminiClient(ctx context.Context, ssmClient auth.ParameterGetter, ssmParam string) (*genai.Client, error) {
	apiKey, err := auth.GetAPIKey(ctx, ssmClient, ssmParam)
	if err != nil {
		return nil, err
	}

	client, err := chat.NewGeminiClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	log.Debug().Msg("connection successful - Gemini client initialized")
	return client, nil
}

// OpenStore opens the configured snapshot backend, wrapped with compression
// when enabled. dynamo is only used for the dynamodb backend.
func OpenStore(cfg *config.Config, dynamo store.DynamoAPI) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		st, err = store.OpenSQLite(cfg.Store.DBPath)
	case config.StoreDynamo:
		if dynamo == nil {
			return nil, fmt.Errorf("dynamodb store requires an AWS client")
		}
		st = store.NewDynamoStore(dynamo, cfg.Store.DynamoTable)
	case config.StoreMemory:
		st = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.Store.Compress {
		return st, nil
	}
	compressed, err := store.Compressed(st)
	if err != nil {
		st.Close()
		return nil, err
	}
	return compressed, nil
}

// Destination picks S3 when a bucket is configured, else the export directory.
func Destination(cfg *config.Config, s3Client *s3.Client, dialog bool) export.Destination {
	if cfg.Export.Bucket != "" && s3Client != nil {
		return &export.S3Destination{
			Client:    s3Client,
			Presigner: s3.NewPresignClient(s3Client),
			Bucket:    cfg.Export.Bucket,
			Prefix:    "scripts",
		}
	}
	return export.NewLocalDestination(cfg.Export.Dir, dialog)
}

func storeTarget(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.StoreSQLite:
		return "sqlite:" + cfg.Store.DBPath
	case config.StoreDynamo:
		return "dynamodb:" + cfg.Store.DynamoTable
	default:
		return cfg.Store.Backend
	}
}
