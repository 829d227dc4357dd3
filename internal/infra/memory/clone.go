package memory

import "github.com/BruksfildServices01/vet-scheduler/internal/models"

// Cópias profundas: nada que sai do store compartilha slices com o que ficou.

func cloneService(s models.Service) models.Service {
	s.WeightPriceRules = append([]models.WeightPriceRule(nil), s.WeightPriceRules...)
	s.SupplyRequirements = append([]models.ServiceSupplyRequirement(nil), s.SupplyRequirements...)
	s.Prerequisites = append([]models.ServicePrerequisite(nil), s.Prerequisites...)
	if s.Stock != nil {
		v := *s.Stock
		s.Stock = &v
	}
	return s
}

func clonePet(p models.Pet) models.Pet {
	p.Markers = append([]models.PetClinicalMarker(nil), p.Markers...)
	return p
}

func clonePromotion(p models.Promotion) models.Promotion {
	p.Triggers = append([]models.PromotionTrigger(nil), p.Triggers...)
	p.Benefits = append([]models.PromotionBenefit(nil), p.Benefits...)
	return p
}

func cloneAppointment(a models.Appointment) models.Appointment {
	a.Items = append([]models.LineItem(nil), a.Items...)
	if a.PaymentReference != nil {
		v := *a.PaymentReference
		a.PaymentReference = &v
	}
	return a
}
