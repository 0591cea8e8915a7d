package bridge

import "github.com/arko-chat/nativekit/internal/models"

// PopupStrategy adapts a popup backend to the bridge contract. A nil backend
// yields a nil strategy so New falls through to the fallback.
func PopupStrategy(backend PopupBackend) Strategy[models.PopupRequest, int] {
	if backend == nil {
		return nil
	}
	return StrategyFunc[models.PopupRequest, int](
		func(req models.PopupRequest, deliver func(int)) {
			backend.ShowPopup(
				req.Title,
				req.Message,
				JoinButtons(req.Buttons),
				len(req.Buttons),
				PopupCallbackFunc(deliver),
			)
		},
	)
}

func SharingStrategy(
	backend SharingBackend,
) Strategy[models.SharePayload, models.ShareResult] {
	if backend == nil {
		return nil
	}
	return StrategyFunc[models.SharePayload, models.ShareResult](
		func(p models.SharePayload, deliver func(models.ShareResult)) {
			image := p.Image
			if image == nil {
				image = []byte{}
			}
			backend.Share(
				p.Text,
				p.URL,
				image,
				len(image),
				SharingCallbackFunc(func(destination string, completed bool) {
					deliver(models.ShareResult{
						Destination: destination,
						Completed:   completed,
					})
				}),
			)
		},
	)
}
