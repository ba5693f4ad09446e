// Package services implements the user cache core: SyncService mirrors the
// live source into the local stores and QueryService answers reads for the
// presentation shells.
package services
