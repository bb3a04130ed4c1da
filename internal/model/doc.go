package model

// Package model defines domain data structures used across the app: the
// download session and its phases, media kinds and metadata, batch download
// tasks and playlist entries. Structures are plain values so surfaces can
// render snapshots without sharing state with the controller.
