package config

const (
	_etc = "/usr/local/etc/com.github.sheets-search"
	_var = "/usr/local/var/com.github.sheets-search"

	DefaultWorkdir     = _var
	DefaultConfig      = _etc + "/sheets-search.yaml"
	DefaultCredentials = _etc + "/.google/credentials.json"
)
