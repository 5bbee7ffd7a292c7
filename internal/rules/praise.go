package rules

import "math/rand/v2"

var praiseMessages = []string{
	"Superstar! 🌟",
	"Level up! 🚀",
	"Nice streak! 🔥",
	"Amazing work! ✨",
	"Champion! 🏆",
	"Fantastic! 🎉",
	"Well done! 👏",
	"Excellent! 💫",
	"Outstanding! 🌈",
	"Brilliant! 💎",
}

func randomPraise() string {
	return praiseMessages[rand.IntN(len(praiseMessages))]
}
