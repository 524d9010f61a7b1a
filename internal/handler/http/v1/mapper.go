package v1

import (
	"github.com/shenikar/rescue_radar_system/internal/models"
	"github.com/shenikar/rescue_radar_system/internal/service"
)

// DTOToSubmitInput преобразует DTO приёма показания во входные данные политики.
// Опциональные поля, не прошедшие числовое приведение, отбрасываются здесь.
func DTOToSubmitInput(dto SubmitReadingRequest) service.SubmitInput {
	return service.SubmitInput{
		VictimID:         dto.VictimID,
		Distance:         dto.DistanceCM.Float(),
		DistanceProvided: dto.DistanceCM != nil && dto.DistanceCM.Present,
		TemperatureC:     dto.TemperatureC.Float(),
		HumidityPct:      dto.HumidityPct.Float(),
		GasPPM:           dto.GasPPM.Float(),
		BearingDeg:       dto.BearingDeg.Float(),
		Confidence:       dto.Confidence.Float(),
		Latitude:         dto.Latitude.Float(),
		Longitude:        dto.Longitude.Float(),
		Detected:         dto.Detected,
	}
}

// ModelToReadingResponse преобразует доменную модель в DTO для ответа
func ModelToReadingResponse(model *models.Reading) *ReadingResponse {
	return &ReadingResponse{
		ID:           model.ID,
		VictimID:     model.VictimID,
		DistanceCM:   model.DistanceCM,
		TemperatureC: model.TemperatureC,
		HumidityPct:  model.HumidityPct,
		GasPPM:       model.GasPPM,
		BearingDeg:   model.BearingDeg,
		Confidence:   model.Confidence,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		Detected:     model.Detected,
		ObservedAt:   model.ObservedAt,
	}
}

// ModelsToReadingResponses преобразует слайс моделей в слайс DTO
func ModelsToReadingResponses(models []*models.Reading) []*ReadingResponse {
	responses := make([]*ReadingResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToReadingResponse(model)
	}
	return responses
}
