package config

// AppName names the config directory and environment prefix.
const AppName = "isolatedaudit"

// EnvConfigPath points at a config file when no --config flag is given.
const EnvConfigPath = "ISOLATEDAUDIT_CONFIG_PATH"

const (
	// Run Defaults
	DefaultRunURL           = "https://brainly.com/question/1713545"
	DefaultRunNumberOfRuns  = 5
	DefaultRunOutputDir     = "results"
	DefaultRunFailurePolicy = FailurePolicySkip

	// Browser Defaults
	DefaultBrowserHeadless          = true
	DefaultBrowserLaunchTimeoutSecs = 60

	// Audit Defaults
	DefaultAuditBackend          = BackendCDP
	DefaultAuditLighthousePath   = "lighthouse"
	DefaultAuditMaxWaitForFCPMs  = 15000
	DefaultAuditMaxWaitForLoadMs = 35000
	DefaultAuditSettleMs         = 3000
	DefaultAuditFormFactor       = "mobile"

	// Mobile emulation matches the auditor's default Moto G Power profile.
	DefaultScreenWidth             = 412
	DefaultScreenHeight            = 823
	DefaultScreenDeviceScaleFactor = 1.75

	// Simulated slow 4G with a 4x CPU slowdown.
	DefaultThrottlingRTTMs        = 150
	DefaultThrottlingDownloadKbps = 1638.4
	DefaultThrottlingUploadKbps   = 750
	DefaultThrottlingCPUSlowdown  = 4

	// Patterns Defaults
	DefaultPatternsDiscoverLimit = 10

	// Storage Defaults
	DefaultStorageParquetCompression = "zstd"

	// Resource Guard Defaults
	DefaultGuardCPUThresholdPercent = 50
	DefaultGuardMemThresholdPercent = 90
	DefaultGuardMaxWaitSecs         = 30
	DefaultGuardSampleIntervalMs    = 500
)

// Failure policies decide what a failed cell does to the batch.
const (
	FailurePolicySkip  = "skip"
	FailurePolicyAbort = "abort"
)

// Auditor backends.
const (
	BackendCDP        = "cdp"
	BackendLighthouse = "lighthouse"
)
