package embedded

import (
	_ "embed"
)

// Embed all prompt style templates and system prompts
//
//go:embed data/styles/professional.txt
var StyleProfessionalTxt []byte

//go:embed data/styles/casual.txt
var StyleCasualTxt []byte

//go:embed data/styles/cinematic.txt
var StyleCinematicTxt []byte

//go:embed data/styles/urban.txt
var StyleUrbanTxt []byte

//go:embed data/styles/minimalist.txt
var StyleMinimalistTxt []byte

//go:embed data/styles/artistic.txt
var StyleArtisticTxt []byte

//go:embed data/styles/vintage.txt
var StyleVintageTxt []byte

//go:embed data/styles/influencer.txt
var StyleInfluencerTxt []byte

//go:embed data/styles/datingprofile.txt
var StyleDatingProfileTxt []byte

//go:embed data/styles/socialads.txt
var StyleSocialAdsTxt []byte

//go:embed data/prompts/image_analysis.txt
var ImageAnalysisPromptTxt []byte

//go:embed data/prompts/synthesis_user.txt
var SynthesisUserPromptTxt []byte
