/*
Package kitbridge forwards analytics and commerce events from a host
event-tracking SDK to a destination experimentation SDK.

# Overview

A Kit translates each host event into destination records, resolves the
user id and attributes that accompany them, applies override flags, and
delivers the records through a gate. While the destination client is not
yet available, records wait in a bounded queue (10 records, oldest
evicted first) and are replayed in order once it is.

# Basic Usage

	kit := kitbridge.New(myHost,
	    kitbridge.WithStarter(starter),
	    kitbridge.WithLogger(logger),
	)
	if err := kit.Create(ctx, map[string]string{
	    "projectId":   "12345",
	    "userIdField": "email",
	}); err != nil {
	    return err
	}
	defer kit.Destroy()

	kit.LogEvent(ctx, &host.Event{Name: "signup"})

# Override Flags

Host events may carry custom flags that change the translation:

  - Optimizely.Value: a number sent as the "value" event attribute
  - Optimizely.EventName: renames the purchase or refund total record
  - Optimizely.UserId: replaces the resolved user id

# Client Availability

Integrators that build the destination client themselves pin it with
SetClient; the SDK's own startup never replaces a pinned client.
OnClientAvailable registers a listener that runs once, when a valid
client first becomes available.

# Thread Safety

All Kit methods are safe for concurrent use. Listener callbacks run on the
goroutine that made the client available, outside the gate's lock.
*/
package kitbridge
