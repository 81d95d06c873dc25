package reporter

import "embed"

//go:embed assets/css/*
var assetsFS embed.FS

//go:embed templates/*
var templatesFS embed.FS
