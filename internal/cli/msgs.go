package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Run commands under named loaders and watch them"
	MsgRunShort     = "Run jobs concurrently, each tracked as a named loader"
	MsgConfigShort  = "Print the effective configuration"
	MsgVersionShort = "Print version information"
	MsgStatusShort  = "Show the loaders of a running busy"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Config file (default is $XDG_CONFIG_HOME/busy/config.toml)"
	MsgFlagFormat      = "Output format: auto, term, text or json"
	MsgFlagParallel    = "Maximum number of jobs running at once (0 = unlimited)"
	MsgFlagFailFast    = "Cancel remaining jobs after the first failure"
	MsgFlagMetrics     = "Serve /metrics and /loaders while jobs run"
	MsgFlagMetricsAddr = "Listen address for the metrics server"
	MsgFlagEncoding    = "Encoding of the printed configuration: toml or yaml"
	MsgFlagStatusAddr  = "Address of the metrics server to query (default is metrics.addr)"

	MsgVersionFormat = "busy version %s\n  commit: %s\n  built:  %s\n"
)

// Long descriptions
const (
	MsgRootLong = `busy runs commands while tracking each one as a named loader.

Every job marks its loader as in progress for as long as it runs. Jobs that
share a name overlap on the same loader, which stays active until the last of
them finishes. The live state is shown as a spinner on terminals, as plain
lines when piped, or as JSON events, and can be scraped from a Prometheus
endpoint.`

	MsgRunLong = `Run executes each JOB concurrently. A JOB is written as

    name=command [args...]

or just "command [args...]", in which case the command's base name is the
loader name. Quote each job so the shell passes it as a single argument:

    busy run "build=make all" "lint=golangci-lint run" "fetch=curl -sO $URL"`

	MsgStatusLong = `Status queries the /loaders endpoint of a busy started with --metrics and
prints the loaders that are active right now.`
)
