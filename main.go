package main

import (
	stdlog "log"
	"time"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/manager"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	podsecv1alpha1 "github.com/telekom/k8s-podsec-admission/api/v1alpha1"
	"github.com/telekom/k8s-podsec-admission/pkg/admission"
	"github.com/telekom/k8s-podsec-admission/pkg/api"
	"github.com/telekom/k8s-podsec-admission/pkg/audit"
	"github.com/telekom/k8s-podsec-admission/pkg/authorizer"
	"github.com/telekom/k8s-podsec-admission/pkg/cli"
	"github.com/telekom/k8s-podsec-admission/pkg/config"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
	"github.com/telekom/k8s-podsec-admission/pkg/policy"
	"github.com/telekom/k8s-podsec-admission/pkg/version"
	"github.com/telekom/k8s-podsec-admission/pkg/webhook"
)

func main() {
	cliConfig := cli.Parse()

	zl := setupLogger(cliConfig.Debug)
	// Ensure controller-runtime uses our zap logger to avoid its default stacktrace output
	ctrl.SetLogger(zapr.NewLogger(zl))

	log := zl.Sugar()
	log.With("version", version.Version).Info("Starting pod security admission controller")
	cliConfig.Print(log)

	cfg, err := config.Load(cliConfig.ConfigPath)
	if err != nil {
		log.Fatalf("Error loading admission controller config: %v", err)
	}
	cfg.Defaults()

	if cliConfig.PolicyDir != "" {
		cfg.Policies.Dir = cliConfig.PolicyDir
	}

	if cliConfig.Debug {
		log.Infof("%#v", cfg)
	}

	provider := policy.NewProvider(loadInitialStore(log, cfg.Policies.Dir))

	kubeConfig, err := ctrl.GetConfig()
	if err != nil {
		log.Fatalf("Error loading kubernetes client config: %v", err)
	}
	clientset, err := kubernetes.NewForConfig(kubeConfig)
	if err != nil {
		log.Fatalf("Error creating kubernetes clientset: %v", err)
	}

	resolver := authorizer.NewResolver(authorizer.NewSubjectAccessReviewAuthorizer(clientset), log)
	engine := admission.NewEngine(provider, resolver, log)

	auditor := setupAudit(log, zl, cfg)
	defer auditor.Close()

	if cliConfig.EnableWatch && cfg.Policies.Watch {
		mgr := setupManager(log, cliConfig, provider, auditor)
		go func() {
			if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
				log.Fatalf("Policy watcher manager failed: %v", err)
			}
		}()
	} else {
		log.Infow("Policy watcher disabled; policies are fixed for the lifetime of the process")
	}

	server := api.NewServer(zl, cfg, cliConfig.Debug)
	err = server.RegisterAll([]api.APIController{
		webhook.NewReviewController(log, engine, auditor),
	})
	if err != nil {
		log.Fatalf("Error registering admission controllers: %v", err)
	}

	if err := server.Listen(); err != nil {
		log.Fatalf("Server terminated: %v", err)
	}
}

// loadInitialStore reads the policy directory when one is configured. An
// empty directory setting yields an empty store; the watcher fills it in.
func loadInitialStore(log *zap.SugaredLogger, dir string) *policy.Store {
	if dir == "" {
		return nil
	}
	policies, err := policy.LoadDir(dir)
	if err != nil {
		log.Fatalf("Error loading policies from %s: %v", dir, err)
	}
	store, err := policy.NewStore(policies)
	if err != nil {
		log.Fatalf("Error building policy store: %v", err)
	}
	log.Infow("Loaded policies from disk", "dir", dir, "count", store.Len())
	metrics.PoliciesLoaded.Set(float64(store.Len()))
	return store
}

func setupManager(log *zap.SugaredLogger, cliConfig *cli.Config, provider *policy.Provider, auditor *audit.Service) manager.Manager {
	scheme := clientgoscheme.Scheme
	if err := podsecv1alpha1.AddToScheme(scheme); err != nil {
		log.Fatalf("Error registering API types: %v", err)
	}

	kubeConfig, err := ctrl.GetConfig()
	if err != nil {
		log.Fatalf("Error loading kubernetes client config: %v", err)
	}

	mgr, err := ctrl.NewManager(kubeConfig, ctrl.Options{
		Scheme: scheme,
		// The admission server exposes /metrics itself.
		Metrics:                 metricsserver.Options{BindAddress: "0"},
		LeaderElection:          cliConfig.EnableLeaderElection,
		LeaderElectionID:        cliConfig.LeaderElectID,
		LeaderElectionNamespace: cliConfig.LeaderElectNamespace,
	})
	if err != nil {
		log.Fatalf("Error creating policy watcher manager: %v", err)
	}

	reconciler := config.NewPodSecurityPolicyReconciler(mgr.GetClient(), provider, auditor, log)
	if err := reconciler.SetupWithManager(mgr); err != nil {
		log.Fatalf("Error setting up policy reconciler: %v", err)
	}
	return mgr
}

func setupAudit(log *zap.SugaredLogger, zl *zap.Logger, cfg config.Config) *audit.Service {
	var sinks []audit.Sink
	if cfg.AuditLogEnabled() {
		sinks = append(sinks, audit.NewLogSink(zl))
	}
	if cfg.Audit.Kafka != nil {
		kafkaSink, err := audit.NewKafkaSink(*cfg.Audit.Kafka, zl)
		if err != nil {
			log.Fatalf("Error creating kafka audit sink: %v", err)
		}
		sinks = append(sinks, audit.NewQueuedSink(kafkaSink, audit.DefaultQueuedSinkConfig(), zl))
		log.Infow("Kafka audit sink enabled", "topic", cfg.Audit.Kafka.Topic)
	}
	if len(sinks) == 0 {
		log.Infow("Audit trail disabled")
	}
	return audit.NewService(log, sinks...)
}

func setupLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	// Disable automatic stacktraces for non-fatal levels to avoid noisy traces in WARN/INFO logs
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	logger, err := cfg.Build()
	if err != nil {
		stdlog.Fatalf("failed to set up logger: %v", err)
	}
	return logger
}
