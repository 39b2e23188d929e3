package handler

import (
	"encoding/json"
	"time"

	"github.com/iequus/iequus_backend/internal/repo"
	"github.com/iequus/iequus_backend/pkg/media"
)

// Stored media keys leave the API as absolute URLs.

type vetView struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	PhoneNumber      *string       `json:"phoneNumber"`
	PhoneCountryCode *string       `json:"phoneCountryCode"`
	LicenseID        string        `json:"licenseId"`
	HospitalID       *int64        `json:"hospitalId"`
	Hospital         *hospitalView `json:"hospital,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
}

func newVetView(v *repo.Veterinarian) vetView {
	return vetView{
		ID:               v.ID,
		Name:             v.Name,
		Email:            v.Email,
		PhoneNumber:      v.PhoneNumber,
		PhoneCountryCode: v.PhoneCountryCode,
		LicenseID:        v.LicenseID,
		HospitalID:       v.HospitalID,
		CreatedAt:        v.CreatedAt,
	}
}

func newVetViews(vs []*repo.Veterinarian) []vetView {
	out := make([]vetView, 0, len(vs))
	for _, v := range vs {
		out = append(out, newVetView(v))
	}
	return out
}

type hospitalView struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	StreetName          *string   `json:"streetName"`
	StreetNumber        *string   `json:"streetNumber"`
	City                *string   `json:"city"`
	Country             *string   `json:"country"`
	OptionalAddress     *string   `json:"optionalAddress"`
	Logo                *string   `json:"logo"`
	AdminVeterinarianID *int64    `json:"adminVeterinarianId"`
	CreatedAt           time.Time `json:"createdAt"`
}

func newHospitalView(s media.Store, h *repo.Hospital) hospitalView {
	return hospitalView{
		ID:                  h.ID,
		Name:                h.Name,
		StreetName:          h.StreetName,
		StreetNumber:        h.StreetNumber,
		City:                h.City,
		Country:             h.Country,
		OptionalAddress:     h.OptionalAddress,
		Logo:                media.URLOrNil(s, h.LogoPath),
		AdminVeterinarianID: h.AdminVeterinarianID,
		CreatedAt:           h.CreatedAt,
	}
}

func newHospitalViews(s media.Store, hs []*repo.Hospital) []hospitalView {
	out := make([]hospitalView, 0, len(hs))
	for _, h := range hs {
		out = append(out, newHospitalView(s, h))
	}
	return out
}

type horseView struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	BirthDate         *string   `json:"birthDate"`
	ProfilePicture    *string   `json:"profilePicture"`
	PictureRightFront *string   `json:"pictureRightFront"`
	PictureLeftFront  *string   `json:"pictureLeftFront"`
	PictureRightHind  *string   `json:"pictureRightHind"`
	PictureLeftHind   *string   `json:"pictureLeftHind"`
	VeterinarianID    *int64    `json:"veterinarianId"`
	IsOwner           *bool     `json:"isOwner,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func newHorseView(s media.Store, h *repo.Horse) horseView {
	return horseView{
		ID:                h.ID,
		Name:              h.Name,
		BirthDate:         dateString(h.BirthDate),
		ProfilePicture:    media.URLOrNil(s, h.ProfilePicturePath),
		PictureRightFront: media.URLOrNil(s, h.PictureRightFrontPath),
		PictureLeftFront:  media.URLOrNil(s, h.PictureLeftFrontPath),
		PictureRightHind:  media.URLOrNil(s, h.PictureRightHindPath),
		PictureLeftHind:   media.URLOrNil(s, h.PictureLeftHindPath),
		VeterinarianID:    h.VeterinarianID,
		CreatedAt:         h.CreatedAt,
	}
}

func newHorseViews(s media.Store, hs []*repo.Horse) []horseView {
	out := make([]horseView, 0, len(hs))
	for _, h := range hs {
		out = append(out, newHorseView(s, h))
	}
	return out
}

func newHorseLinkViews(s media.Store, links []*repo.HorseLink) []horseView {
	out := make([]horseView, 0, len(links))
	for _, l := range links {
		v := newHorseView(s, &l.Horse)
		owner := l.IsOwner
		v.IsOwner = &owner
		out = append(out, v)
	}
	return out
}

type clientView struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Email            *string   `json:"email"`
	PhoneNumber      *string   `json:"phoneNumber"`
	PhoneCountryCode *string   `json:"phoneCountryCode"`
	IsOwner          *bool     `json:"isOwner,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func newClientView(c *repo.Client) clientView {
	return clientView{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		PhoneNumber:      c.PhoneNumber,
		PhoneCountryCode: c.PhoneCountryCode,
		CreatedAt:        c.CreatedAt,
	}
}

func newClientViews(cs []*repo.Client) []clientView {
	out := make([]clientView, 0, len(cs))
	for _, c := range cs {
		out = append(out, newClientView(c))
	}
	return out
}

func newClientLinkViews(links []*repo.ClientLink) []clientView {
	out := make([]clientView, 0, len(links))
	for _, l := range links {
		v := newClientView(&l.Client)
		owner := l.IsOwner
		v.IsOwner = &owner
		out = append(out, v)
	}
	return out
}

type appointmentView struct {
	ID                     int64     `json:"id"`
	HorseID                int64     `json:"horseId"`
	VeterinarianID         int64     `json:"veterinarianId"`
	LamenessRightFront     *int      `json:"lamenessRightFront"`
	LamenessLeftFront      *int      `json:"lamenessLeftFront"`
	LamenessRightHind      *int      `json:"lamenessRightHind"`
	LamenessLeftHind       *int      `json:"lamenessLeftHind"`
	BPM                    *int      `json:"bpm"`
	ECGTime                *int      `json:"ecgTime"`
	MuscleTensionFrequency *string   `json:"muscleTensionFrequency"`
	MuscleTensionStiffness *string   `json:"muscleTensionStiffness"`
	MuscleTensionR         *string   `json:"muscleTensionR"`
	Comment                *string   `json:"comment"`
	CBC                    *string   `json:"cbc"`
	CreatedAt              time.Time `json:"createdAt"`
}

func newAppointmentView(s media.Store, a *repo.Appointment) appointmentView {
	return appointmentView{
		ID:                     a.ID,
		HorseID:                a.HorseID,
		VeterinarianID:         a.VeterinarianID,
		LamenessRightFront:     a.LamenessRightFront,
		LamenessLeftFront:      a.LamenessLeftFront,
		LamenessRightHind:      a.LamenessRightHind,
		LamenessLeftHind:       a.LamenessLeftHind,
		BPM:                    a.BPM,
		ECGTime:                a.ECGTime,
		MuscleTensionFrequency: a.MuscleTensionFrequency,
		MuscleTensionStiffness: a.MuscleTensionStiffness,
		MuscleTensionR:         a.MuscleTensionR,
		Comment:                a.Comment,
		CBC:                    media.URLOrNil(s, a.CBCPath),
		CreatedAt:              a.CreatedAt,
	}
}

func newAppointmentViews(s media.Store, as []*repo.Appointment) []appointmentView {
	out := make([]appointmentView, 0, len(as))
	for _, a := range as {
		out = append(out, newAppointmentView(s, a))
	}
	return out
}

type measureView struct {
	ID             int64           `json:"id"`
	HorseID        int64           `json:"horseId"`
	VeterinarianID *int64          `json:"veterinarianId"`
	AppointmentID  *int64          `json:"appointmentId"`
	Date           *string         `json:"date"`
	UserBW         *int            `json:"userBW"`
	UserBCS        *float64        `json:"userBCS"`
	AlgorithmBW    *float64        `json:"algorithmBW"`
	AlgorithmBCS   *float64        `json:"algorithmBCS"`
	Coordinates    json.RawMessage `json:"coordinates"`
	Picture        *string         `json:"picture"`
	Favorite       bool            `json:"favorite"`
}

func newMeasureView(s media.Store, m *repo.Measure) measureView {
	coords := m.Coordinates
	if len(coords) == 0 {
		coords = json.RawMessage("null")
	}
	return measureView{
		ID:             m.ID,
		HorseID:        m.HorseID,
		VeterinarianID: m.VeterinarianID,
		AppointmentID:  m.AppointmentID,
		Date:           dateString(m.Date),
		UserBW:         m.UserBW,
		UserBCS:        m.UserBCS,
		AlgorithmBW:    m.AlgorithmBW,
		AlgorithmBCS:   m.AlgorithmBCS,
		Coordinates:    coords,
		Picture:        media.URLOrNil(s, m.PicturePath),
		Favorite:       m.Favorite,
	}
}

func newMeasureViews(s media.Store, ms []*repo.Measure) []measureView {
	out := make([]measureView, 0, len(ms))
	for _, m := range ms {
		out = append(out, newMeasureView(s, m))
	}
	return out
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
