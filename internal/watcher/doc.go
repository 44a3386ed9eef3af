// Package watcher keeps index records current while a tree changes. It
// watches every directory under a root with fsnotify and, after a quiet
// period per directory, asks the caller to rescan just that directory.
//
// Writes of the index record itself, hidden files, and temporary files are
// ignored so a rescan never triggers another rescan.
package watcher
