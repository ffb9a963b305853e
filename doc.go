// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2026-present knet authors.

// Package knet is the datapath core of a multi-point, redundant
// cluster-messaging library. A Handle exchanges datagrams with a
// fixed set of configured peer Hosts over several concurrent network
// Links per peer, with per-packet sequencing, loss tolerance,
// optional payload compression, and per-link liveness detection.
//
// knet is not a reliable, ordered, or stream-oriented transport: it
// gives at-most-once delivery within a bounded deduplication window
// and does not guarantee in-order delivery across redundant links.
// Cluster membership is configured explicitly through AddHost/SetLinkConfig,
// not discovered dynamically.
package knet
