// Kuchikomi - Socially Weighted Venue Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kuchikomi

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: ListenAndServe under supervision with graceful
    Shutdown on cancellation
  - StoreMonitorService: periodic venue and history store pings feeding
    the dependency_up gauge
*/
package services
