package config

const (
	_etc = "/usr/local/etc/sheets-search"
	_var = "/usr/local/var/sheets-search"

	DefaultWorkdir     = _var
	DefaultConfig      = _etc + "/sheets-search.yaml"
	DefaultCredentials = _etc + "/.google/credentials.json"
)
