// Package organizer finalizes rendered videos by moving them out of staging
// and into the library.
//
// It derives a filesystem-safe name from the job title, handles collision-safe
// moves across filesystems, writes an SRT caption sidecar next to the video,
// and publishes completion notifications. Progress updates and error wrapping
// follow the same conventions as other stages so the workflow manager can
// react uniformly.
package organizer
