package config

// DefaultYAML returns a commented YAML string for init-config.
func DefaultYAML() string {
	return `# wellwatch service configuration
# Generated by: wellwatch init-config
#
# Flags passed to "wellwatch serve" override these values.

# gRPC listen address (RiskService). Empty disables gRPC.
grpc_addr: "127.0.0.1:9743"

# HTTP listen address (JSON API, /healthz, /metrics). Empty disables HTTP.
http_addr: "127.0.0.1:9744"

# Keyword tables. Empty uses ~/.wellwatch/lexicon.yaml, or the built-in
# tables when that file does not exist. The file is watched and reloaded.
lexicon_path: ""

# Locale used to pick crisis resources when a message carries none.
default_locale: "en-US"

# Audit sinks. Message text is never written, only its SHA-256 digest.
# jsonl_path: hash-chained log, check with "wellwatch audit verify".
#   Defaults to ~/.wellwatch/audit.jsonl; set "" to disable.
# sqlite_path: queryable store for "wellwatch audit recent".
audit:
  # jsonl_path: "/var/lib/wellwatch/audit.jsonl"
  sqlite_path: ""
  queue_size: 256

# Rolling window of user messages kept per session for conversation scoring.
session:
  window: 50
  idle_ttl: 30m
  sweep_interval: 1m

# Human-support escalation webhooks.
# Events: crisis_detected, intervention_required,
#         conversation_high, conversation_critical
# Formats: generic, slack, pagerduty
alerts: []
#  - url: "https://hooks.slack.com/services/..."
#    format: slack
#    events: [intervention_required, conversation_critical]
#    headers: {}

metrics:
  enabled: true
  namespace: wellwatch

log:
  level: info
  format: text
`
}
