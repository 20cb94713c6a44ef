// Package docs holds the general OpenAPI annotations for the scandeck API.
// Endpoint annotations live on the handlers in internal/api/handlers.
//
//go:generate swag init -g swagger_docs.go -o ./swagger --dir ./,../internal/api/handlers --parseDependency --parseInternal
package docs

// @title scandeck API
// @version 0.1.0
// @description Drives nmap scans in tabs and serves their results to a renderer.
// @description
// @description ## Features
// @description - **Tabs**: each tab runs one scan, parses its XML and keeps the result browsable
// @description - **Views**: host and service selections turn into port and host listings
// @description - **Profiles**: named command templates with a target placeholder
// @description - **Archive**: saved scans in PostgreSQL, searchable by title, target, command and host
// @description - **Events**: a websocket stream of tab status, output and prompts
//
// @contact.name scandeck maintainers
// @contact.url https://github.com/anstrom/scandeck
//
// @license.name MIT
// @license.url https://github.com/anstrom/scandeck/blob/main/LICENSE
//
// @host localhost:8470
// @BasePath /api/v1
