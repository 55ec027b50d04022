package events

import "time"

// SampleEvents returns a small demo corpus for city, dated relative to now.
func SampleEvents(city string, now time.Time) []Event {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(DateLayout)
	}
	return []Event{
		{
			Title:       "Rock Konseri - Duman",
			Description: "Duman'ın açık hava konseri, sevilen şarkılar canlı performansla",
			City:        city,
			Category:    CategoryMusic,
			Date:        day(5),
			Time:        "21:00",
			Venue:       "Açıkhava Tiyatrosu",
			Address:     "Konyaaltı",
			Price:       "350 TL - 600 TL",
			URL:         "https://example.com/duman-antalya",
			Organizer:   "Biletix",
			Tags:        []string{"rock", "konser", "müzik"},
		},
		{
			Title:       "Tiyatro: Hamlet",
			Description: "Shakespeare'in ölümsüz eseri Devlet Tiyatroları sahnesinde",
			City:        city,
			Category:    CategoryTheater,
			Date:        day(3),
			Time:        "20:00",
			Venue:       "Haşim İşcan Kültür Merkezi",
			Address:     "Muratpaşa",
			Price:       "150 TL",
			URL:         "https://example.com/hamlet-antalya",
			Organizer:   "Devlet Tiyatroları",
			Tags:        []string{"tiyatro", "klasik"},
		},
		{
			Title:       "Akdeniz Fotoğraf Sergisi",
			Description: "Akdeniz kıyılarından seçilmiş fotoğraflar",
			City:        city,
			Category:    CategoryExhibition,
			Date:        day(1),
			Time:        "10:00",
			Venue:       "Antalya Müzesi",
			Address:     "Konyaaltı Caddesi",
			Price:       "Ücretsiz",
			URL:         "https://example.com/fotograf-sergisi",
			Organizer:   "Antalya Büyükşehir Belediyesi",
			Tags:        []string{"sergi", "fotoğraf", "sanat"},
		},
		{
			Title:       "Seramik Atölyesi",
			Description: "Yeni başlayanlar için çömlek ve seramik workshop'u",
			City:        city,
			Category:    CategoryWorkshop,
			Date:        day(7),
			Time:        "14:00",
			Venue:       "Kaleiçi Sanat Evi",
			Address:     "Kaleiçi",
			Price:       "400 TL",
			URL:         "https://example.com/seramik",
			Organizer:   "Kaleiçi Sanat Evi",
			Tags:        []string{"atölye", "seramik"},
		},
		{
			Title:       "Antalyaspor - Fenerbahçe",
			Description: "Süper Lig futbol maçı",
			City:        city,
			Category:    CategorySports,
			Date:        day(10),
			Time:        "19:00",
			Venue:       "Corendon Airlines Park",
			Address:     "Kepez",
			Price:       "200 TL - 1000 TL",
			URL:         "https://example.com/antalyaspor",
			Organizer:   "Antalyaspor",
			Tags:        []string{"futbol", "maç", "spor"},
		},
		{
			Title:       "Açık Hava Sinema Gecesi",
			Description: "Yıldızlar altında klasik Türk filmleri gösterimi",
			City:        city,
			Category:    CategoryCinema,
			Date:        day(2),
			Time:        "21:30",
			Venue:       "Karaalioğlu Parkı",
			Address:     "Muratpaşa",
			Price:       "Ücretsiz",
			URL:         "https://example.com/acikhava-sinema",
			Organizer:   "Antalya Film Kulübü",
			Tags:        []string{"sinema", "film"},
		},
		{
			Title:       "Caz Akşamı",
			Description: "Yerel caz gruplarıyla sahil kenarında müzik dolu bir akşam",
			City:        city,
			Category:    CategoryMusic,
			Date:        day(12),
			Time:        "20:30",
			Venue:       "Marina Sahnesi",
			Address:     "Kaleiçi Yat Limanı",
			Price:       "250 TL",
			URL:         "https://example.com/caz-aksami",
			Organizer:   "Antalya Caz Derneği",
			Tags:        []string{"caz", "müzik"},
		},
	}
}
