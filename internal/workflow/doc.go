// Package workflow advances queue jobs through the render pipeline.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// jobs into the registered stage handlers (transform, narrate, plan, compose,
// mux, organize) while capturing progress and failure metadata. Stages run
// one job at a time in pipeline order; frame composition saturates the CPU,
// so a single lane keeps render throughput predictable.
//
// Stage errors are classified through the services sentinels: validation,
// configuration, and not-found failures park the job in review for manual
// intervention, everything else marks it failed and retryable. A job
// cancelled through the API is observed by the heartbeat loop mid-stage and
// its stage context is cancelled.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching ConfigureStages the transition order; this package is
// the authoritative home for that coordination logic.
package workflow
