package config

import "os"

func IsDebug() bool {
	return os.Getenv("SOLARSMART_DEBUG") == "1"
}
