package msglog

const (
	emptyString = ""

	// DefaultTabSize is the number of columns a single Tab() step is worth.
	DefaultTabSize = 2

	// DefaultLevel is the level name used when a configuration does not name one.
	DefaultLevel = LevelInfo
)

// Names of the default level set.
const (
	LevelError   = "error"
	LevelWarn    = "warn"
	LevelInfo    = "info"
	LevelVerbose = "verbose"
	LevelDebug   = "debug"
	LevelTrace   = "trace"
)

const (
	errMsgNilConfig       = "Logging config is nil."
	errMsgNilService      = "Logger service is nil."
	errMsgConfigInvalid   = "Logging configuration is invalid."
	errMsgNoLevels        = "Level set has no levels."
	errMsgNegativeRank    = "Level rank must not be negative."
	errMsgDuplicateRank   = "Two level names share the same rank."
	errMsgDuplicateName   = "Level name is registered twice."
	errMsgEmptyLevelName  = "Level name must not be empty."
	errMsgBadDefault      = "Default level is not part of the level set."
	errMsgBadThreshold    = "Threshold is not a registered level."
	errMsgNilLevelSet     = "Level set is nil."
	errMsgUnknownStyles   = "Unknown style table."
	errMsgLoadConfig      = "Unable to load logging configuration."
	errMsgUnsupportedConf = "Unsupported configuration file format."
	errMsgCreateLogDir    = "Unable to create logs directory."
	errMsgSinkSetup       = "Unable to set up log sink."
	errMsgCloseSinks      = "One or more sinks failed to close."
)
