// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 16

// Addon Registry - these keys govern the handling of installed addon manifests.
const (
	AddonsAutoRefreshManifests = "addons.auto_refresh_manifests"
)

// History Tracking - these keys configure the persistence of media consumption state.
const (
	HistorySaveOnWatch = "history.save_on_watch"
	HistoryMaxEntries  = "history.max_entries"
	HistoryResumeLimit = "history.resume_limit"
)

// Search Interaction - these keys define the behavior of cross-addon search discovery.
const (
	SearchShowQuerySuggestions = "search.show_query_suggestions"
	SearchResultLimit          = "search.result_limit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Media Playback - these keys maintain the state and configuration for external video players.
const (
	Player                     = "player.default"
	PlayerCompletionPercentage = "player.completion_percentage"
)

// Network Transport - these keys tune the HTTP layer shared by addon and tracking clients.
const (
	NetworkTimeout = "network.timeout"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern general application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Tracking Service - these keys configure the optional Trakt integration surface.
const (
	TraktCatalogLimit = "trakt.catalog_limit"
)
