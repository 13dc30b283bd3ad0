package ura

import (
	"net/url"
	"strings"
)

const DefaultBaseURL = "http://countdown.api.tfl.gov.uk/interfaces/ura/instant_V1"

var (
	arrivalsReturnList        = []string{"LineName", "DestinationName", "EstimatedTime", "RegistrationNumber", "DirectionID"}
	journeyProgressReturnList = []string{"StopPointName", "EstimatedTime"}
	stopDetailReturnList      = []string{"StopPointName", "Towards", "StopPointIndicator", "StopPointType", "Latitude", "Longitude"}
	stopMessagesReturnList    = []string{"MessagePriority", "MessageText", "StartTime", "ExpireTime"}
	stopListReturnList        = []string{"StopPointName", "StopCode1", "Towards", "StopPointIndicator", "StopPointType", "Latitude", "Longitude"}
)

// Requests builds instant API request URLs. The API answers with fields in its own fixed
// order regardless of the ReturnList order, which is what the mappers rely on.
type Requests struct {
	BaseURL string
}

func (r Requests) Arrivals(stopCode string) string {
	return r.build([][2]string{{"StopCode1", stopCode}}, arrivalsReturnList)
}

func (r Requests) JourneyProgress(registrationNumber string, directionID string) string {
	return r.build([][2]string{
		{"RegistrationNumber", registrationNumber},
		{"DirectionID", directionID},
	}, journeyProgressReturnList)
}

func (r Requests) StopDetail(stopCode string) string {
	return r.build([][2]string{{"StopCode1", stopCode}}, stopDetailReturnList)
}

func (r Requests) StopMessages(stopCode string) string {
	return r.build([][2]string{{"StopCode1", stopCode}}, stopMessagesReturnList)
}

func (r Requests) StopsByName(name string) string {
	return r.build([][2]string{{"StopPointName", name}}, stopListReturnList)
}

func (r Requests) build(parameters [][2]string, returnList []string) string {
	baseURL := r.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	parts := make([]string, 0, len(parameters)+1)
	for _, parameter := range parameters {
		parts = append(parts, parameter[0]+"="+url.QueryEscape(parameter[1]))
	}
	parts = append(parts, "ReturnList="+strings.Join(returnList, ","))

	return baseURL + "?" + strings.Join(parts, "&")
}
