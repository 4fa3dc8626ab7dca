package fprint

import "github.com/openbiometrics/libfprint-go/pkg/fprint/driver"

// Aliases for boundary types so callers rarely need to import the
// driver package directly.

// Finger identifies which physical finger a print corresponds to.
type Finger = driver.Finger

const (
	FingerUnknown     = driver.FingerUnknown
	FingerLeftThumb   = driver.FingerLeftThumb
	FingerLeftIndex   = driver.FingerLeftIndex
	FingerLeftMiddle  = driver.FingerLeftMiddle
	FingerLeftRing    = driver.FingerLeftRing
	FingerLeftLittle  = driver.FingerLeftLittle
	FingerRightThumb  = driver.FingerRightThumb
	FingerRightIndex  = driver.FingerRightIndex
	FingerRightMiddle = driver.FingerRightMiddle
	FingerRightRing   = driver.FingerRightRing
	FingerRightLittle = driver.FingerRightLittle
)

// ParseFinger maps a name produced by Finger.String back to its value.
func ParseFinger(name string) Finger { return driver.ParseFinger(name) }

// ScanType reports how a scanner expects the finger to be presented.
type ScanType = driver.ScanType

const (
	ScanTypeSwipe = driver.ScanTypeSwipe
	ScanTypePress = driver.ScanTypePress
)

// Feature is a bitset of optional device capabilities.
type Feature = driver.Feature

const (
	FeatureCapture         = driver.FeatureCapture
	FeatureIdentify        = driver.FeatureIdentify
	FeatureVerify          = driver.FeatureVerify
	FeatureStorage         = driver.FeatureStorage
	FeatureStorageList     = driver.FeatureStorageList
	FeatureStorageDelete   = driver.FeatureStorageDelete
	FeatureStorageClear    = driver.FeatureStorageClear
	FeatureDuplicatesCheck = driver.FeatureDuplicatesCheck
	FeatureAlwaysOn        = driver.FeatureAlwaysOn
	FeatureUpdatePrint     = driver.FeatureUpdatePrint
)

// FingerStatus describes the finger presence state a device reports.
type FingerStatus = driver.FingerStatus

const (
	FingerStatusNeeded  = driver.FingerStatusNeeded
	FingerStatusPresent = driver.FingerStatusPresent
)

// RetryError is the per-stage scan condition delivered to progress
// callbacks when a stage must be repeated.
type RetryError = driver.RetryError

// RetryReason classifies why a scan stage must be repeated.
type RetryReason = driver.RetryReason

const (
	RetryGeneral      = driver.RetryGeneral
	RetryTooShort     = driver.RetryTooShort
	RetryRemoveFinger = driver.RetryRemoveFinger
	RetryCenterFinger = driver.RetryCenterFinger
)
