package constants

import "time"

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "IEQUUS"

	ServiceName = "iequus_backend"
)

// TokenLifetime keeps mobile sessions alive for two years.
const TokenLifetime = 730 * 24 * time.Hour

// Media folders, relative to the media root or bucket.
const (
	FolderHorseProfile  = "horses/horse_profile"
	FolderHorseLimbs    = "horses/horse_limbs"
	FolderHospitalLogos = "hospitals/hospitals_logos"
	FolderMeasures      = "measures"
	FolderCBC           = "appointments/cbc"
	FolderXray          = "xray"
)

// XrayReferenceImage is the annotated image returned by the x-ray endpoint.
const XrayReferenceImage = "XRay_Random.png"

// MeasurePointCount is the number of body landmarks a full measure carries.
const MeasurePointCount = 14
