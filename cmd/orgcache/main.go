// Package main provides the orgcache CLI for inspecting GitHub
// organizations through the shared collection cache.
package main

import "github.com/opsgate/orgcache/cmd/orgcache/commands"

func main() {
	commands.Execute(Version)
}
