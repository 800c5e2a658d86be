package main

import "ewms/internal/models"

// Type aliases so handlers and tests can use the unqualified names while
// the definitions live in internal/models.

type APIResponse = models.APIResponse
type Meta = models.Meta
type Device = models.Device
type DisposalRequest = models.DisposalRequest
type Activity = models.Activity
type StatusUpdate = models.StatusUpdate
type CommunityPost = models.CommunityPost
type ExchangeListing = models.ExchangeListing
type Notification = models.Notification
type WasteSummary = models.WasteSummary
type WasteForecast = models.WasteForecast
