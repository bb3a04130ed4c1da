// Package download runs many download sessions side by side. Each URL gets
// its own session controller; the service limits how many run at once,
// mirrors every session's progress into a DownloadTask and reports changes
// through a single callback.
package download
