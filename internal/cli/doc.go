// Package cli implements the interactive shell of the usercache CLI.
//
// The shell reads one command per line:
//
//	help           show available commands
//	status         last sync time and cached user count
//	c | cached     list cached users
//	live           list live users
//	sync           mirror the live users into the cache
//	clear          delete cached users and the last-sync marker
//	watch          print the user table on every change until Enter
//	exit | quit    leave the program
//
// Failures are printed as human-readable messages and never end the shell.
package cli
