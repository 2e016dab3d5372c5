// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IndexService chunks, embeds and stores documents. SearchService answers
// free-text and document-to-document similarity queries. SettingsService
// reads and writes configuration through a driven.ConfigStore.
package services
