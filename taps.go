// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2022
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package ssb

// Band-pass tap sets for the 12 kHz demodulator. These are 100th order
// windowed-sinc low-pass designs (Octave fir1) applied to the I and Q arms
// after the receiver mix; the Weaver second mix turns them into a band-pass
// around the BFO offset.
//
// The tables are symmetric, so the filter's tap ordering does not matter.
// They are shared by every FIRFilter bound to a Bandwidth and must never be
// written to.

// narrowCWTaps, cutoff 125/12000. The shipped table is identical to the
// wide CW set.
var narrowCWTaps = [...]float64{
	1.33275e-05, 5.24769e-05, 9.6034e-05, 0.000146771, 0.000207588,
	0.000281477, 0.000371482, 0.000480656, 0.000612018, 0.00076851,
	0.000952954, 0.00116801, 0.00141611, 0.00169948, 0.00202002,
	0.00237931, 0.00277859, 0.00321871, 0.00370009, 0.00422273,
	0.00478618, 0.00538952, 0.00603137, 0.00670988, 0.00742273,
	0.00816715, 0.00893995, 0.0097375, 0.0105558, 0.0113905,
	0.0122368, 0.0130899, 0.0139446, 0.0147953, 0.0156367,
	0.0164631, 0.017269, 0.0180485, 0.0187964, 0.0195071,
	0.0201755, 0.0207966, 0.0213659, 0.0218789, 0.0223318,
	0.0227212, 0.0230439, 0.0232976, 0.0234803, 0.0235904,
	0.0236272, 0.0235904, 0.0234803, 0.0232976, 0.0230439,
	0.0227212, 0.0223318, 0.0218789, 0.0213659, 0.0207966,
	0.0201755, 0.0195071, 0.0187964, 0.0180485, 0.017269,
	0.0164631, 0.0156367, 0.0147953, 0.0139446, 0.0130899,
	0.0122368, 0.0113905, 0.0105558, 0.0097375, 0.00893995,
	0.00816715, 0.00742273, 0.00670988, 0.00603137, 0.00538952,
	0.00478618, 0.00422273, 0.00370009, 0.00321871, 0.00277859,
	0.00237931, 0.00202002, 0.00169948, 0.00141611, 0.00116801,
	0.000952954, 0.00076851, 0.000612018, 0.000480656, 0.000371482,
	0.000281477, 0.000207588, 0.000146771, 9.6034e-05, 5.24769e-05,
	1.33275e-05,
}

// wideCWTaps, cutoff 250/12000.
var wideCWTaps = [...]float64{
	1.33275e-05, 5.24769e-05, 9.6034e-05, 0.000146771, 0.000207588,
	0.000281477, 0.000371482, 0.000480656, 0.000612018, 0.00076851,
	0.000952954, 0.00116801, 0.00141611, 0.00169948, 0.00202002,
	0.00237931, 0.00277859, 0.00321871, 0.00370009, 0.00422273,
	0.00478618, 0.00538952, 0.00603137, 0.00670988, 0.00742273,
	0.00816715, 0.00893995, 0.0097375, 0.0105558, 0.0113905,
	0.0122368, 0.0130899, 0.0139446, 0.0147953, 0.0156367,
	0.0164631, 0.017269, 0.0180485, 0.0187964, 0.0195071,
	0.0201755, 0.0207966, 0.0213659, 0.0218789, 0.0223318,
	0.0227212, 0.0230439, 0.0232976, 0.0234803, 0.0235904,
	0.0236272, 0.0235904, 0.0234803, 0.0232976, 0.0230439,
	0.0227212, 0.0223318, 0.0218789, 0.0213659, 0.0207966,
	0.0201755, 0.0195071, 0.0187964, 0.0180485, 0.017269,
	0.0164631, 0.0156367, 0.0147953, 0.0139446, 0.0130899,
	0.0122368, 0.0113905, 0.0105558, 0.0097375, 0.00893995,
	0.00816715, 0.00742273, 0.00670988, 0.00603137, 0.00538952,
	0.00478618, 0.00422273, 0.00370009, 0.00321871, 0.00277859,
	0.00237931, 0.00202002, 0.00169948, 0.00141611, 0.00116801,
	0.000952954, 0.00076851, 0.000612018, 0.000480656, 0.000371482,
	0.000281477, 0.000207588, 0.000146771, 9.6034e-05, 5.24769e-05,
	1.33275e-05,
}

// narrowSSBTaps, cutoff 1020/12000.
var narrowSSBTaps = [...]float64{
	0.000299054, 0.000188022, 5.73147e-05, -9.45361e-05, -0.000267475,
	-0.000458224, -0.000658816, -0.000855647, -0.00102931, -0.0011554,
	-0.00120632, -0.00115407, -0.000973822, -0.00064789, -0.000169779,
	0.000452272, 0.00119269, 0.00200744, 0.00283464, 0.00359726,
	0.00420787, 0.0045753, 0.00461276, 0.00424705, 0.00342781,
	0.00213626, 0.000392428, -0.00173999, -0.00415175, -0.00668977,
	-0.00916253, -0.0113493, -0.0130124, -0.0139128, -0.0138265,
	-0.012562, -0.00997698, -0.00599262, -0.000604795, 0.00610914,
	0.0139888, 0.0227944, 0.0322168, 0.0418914, 0.0514174,
	0.0603798, 0.0683734, 0.0750261, 0.080022, 0.0831202,
	0.0841701, 0.0831202, 0.080022, 0.0750261, 0.0683734,
	0.0603798, 0.0514174, 0.0418914, 0.0322168, 0.0227944,
	0.0139888, 0.00610914, -0.000604795, -0.00599262, -0.00997698,
	-0.012562, -0.0138265, -0.0139128, -0.0130124, -0.0113493,
	-0.00916253, -0.00668977, -0.00415175, -0.00173999, 0.000392428,
	0.00213626, 0.00342781, 0.00424705, 0.00461276, 0.0045753,
	0.00420787, 0.00359726, 0.00283464, 0.00200744, 0.00119269,
	0.000452272, -0.000169779, -0.00064789, -0.000973822, -0.00115407,
	-0.00120632, -0.0011554, -0.00102931, -0.000855647, -0.000658816,
	-0.000458224, -0.000267475, -9.45361e-05, 5.73147e-05, 0.000188022,
	0.000299054,
}

// wideSSBTaps, cutoff 1200/12000.
var wideSSBTaps = [...]float64{
	-7.74788e-05, -0.000367152, -0.00054399, -0.000532634, -0.000304421,
	9.94694e-05, 0.000559382, 0.000897583, 0.00093385, 0.000564832,
	-0.00016314, -0.00102717, -0.00167654, -0.00175765, -0.00107753,
	0.000262436, 0.00183457, 0.00299675, 0.00313153, 0.00193186,
	-0.000387748, -0.00306799, -0.00502119, -0.00524086, -0.00326123,
	0.000526855, 0.00487117, 0.00802679, 0.00840902, 0.00530257,
	-0.00066613, -0.00753681, -0.0125862, -0.0133231, -0.00857107,
	0.000791895, 0.0117942, 0.0201706, 0.0218272, 0.014515,
	-0.000891776, -0.0200518, -0.03601, -0.0411124, -0.0294477,
	0.000955936, 0.0469428, 0.100533, 0.15074, 0.186421,
	0.199326, 0.186421, 0.15074, 0.100533, 0.0469428,
	0.000955936, -0.0294477, -0.0411124, -0.03601, -0.0200518,
	-0.000891776, 0.014515, 0.0218272, 0.0201706, 0.0117942,
	0.000791895, -0.00857107, -0.0133231, -0.0125862, -0.00753681,
	-0.00066613, 0.00530257, 0.00840902, 0.00802679, 0.00487117,
	0.000526855, -0.00326123, -0.00524086, -0.00502119, -0.00306799,
	-0.000387748, 0.00193186, 0.00313153, 0.00299675, 0.00183457,
	0.000262436, -0.00107753, -0.00175765, -0.00167654, -0.00102717,
	-0.00016314, 0.000564832, 0.00093385, 0.000897583, 0.000559382,
	9.94694e-05, -0.000304421, -0.000532634, -0.00054399, -0.000367152,
	-7.74788e-05,
}

// sliceTaps is the 400th order low-pass (cutoff 10500/192000) used before
// decimating a 192 kHz capture down to 12 kHz.
var sliceTaps = [...]float64{
	9.81549e-05, 0.000113028, 0.000125003, 0.000133747, 0.000138991,
	0.000140533, 0.000138247, 0.000132085, 0.000122087, 0.000108378,
	9.11761e-05, 7.07902e-05, 4.76195e-05, 2.21512e-05, -5.0452e-06,
	-3.33251e-05, -6.19794e-05, -9.02473e-05, -0.000117332, -0.000142418,
	-0.000164694, -0.000183369, -0.000197705, -0.000207032, -0.000210779,
	-0.000208495, -0.000199871, -0.000184762, -0.000163201, -0.000135412,
	-0.000101821, -6.3053e-05, -1.99308e-05, 2.65357e-05, 7.51676e-05,
	0.00012464, 0.000173515, 0.000220272, 0.000263358, 0.000301225,
	0.000332383, 0.00035545, 0.000369202, 0.000372621, 0.000364943,
	0.000345696, 0.000314735, 0.000272269, 0.000218875, 0.000155506,
	8.34812e-05, 4.4726e-06, -7.95297e-05, -0.000166258, -0.000253224,
	-0.000337777, -0.000417186, -0.000488713, -0.000549702, -0.000597669,
	-0.000630382, -0.000645954, -0.000642917, -0.000620295, -0.000577656,
	-0.000515165, -0.000433605, -0.00033439, -0.000219556, -9.17314e-05,
	4.59135e-05, 0.000189734, 0.000335699, 0.000479496, 0.000616647,
	0.000742642, 0.000853072, 0.000943775, 0.00101097, 0.00105141,
	0.00106247, 0.00104232, 0.000989951, 0.00090531, 0.000789308,
	0.000643857, 0.000471856, 0.000277154, 6.44747e-05, -0.000160681,
	-0.000392166, -0.000623345, -0.000847271, -0.00105688, -0.0012452,
	-0.00140558, -0.00153186, -0.00161866, -0.0016615, -0.00165701,
	-0.0016031, -0.00149905, -0.00134562, -0.00114506, -0.000901154,
	-0.000619154, -0.000305683, 3.13903e-05, 0.000383135, 0.000739776,
	0.00109095, 0.00142598, 0.00173418, 0.0020052, 0.00222931,
	0.00239773, 0.00250293, 0.00253893, 0.00250151, 0.00238844,
	0.00219962, 0.00193719, 0.00160553, 0.00121129, 0.000763231,
	0.000272113, -0.000249564, -0.000787838, -0.00132763, -0.00185312,
	-0.00234822, -0.00279696, -0.00318403, -0.00349518, -0.00371776,
	-0.0038411, -0.00385691, -0.00375964, -0.0035468, -0.00321907,
	-0.00278054, -0.00223866, -0.00160425, -0.000891279, -0.000116672,
	0.00070006, 0.00153725, 0.00237156, 0.00317861, 0.00393353,
	0.00461173, 0.00518951, 0.00564479, 0.00595784, 0.00611187,
	0.00609368, 0.00589418, 0.00550887, 0.00493815, 0.00418761,
	0.00326811, 0.00219578, 0.000991891, -0.000317443, -0.00170168,
	-0.0031264, -0.00455392, -0.00594414, -0.00725529, -0.00844495,
	-0.00947096, -0.0102925, -0.0108709, -0.0111709, -0.0111614,
	-0.0108164, -0.0101158, -0.00904593, -0.00760025, -0.00577968,
	-0.00359284, -0.00105609, 0.00180654, 0.00496366, 0.00837698,
	0.0120019, 0.0157883, 0.0196813, 0.0236227, 0.0275515,
	0.0314056, 0.0351226, 0.0386417, 0.041904, 0.0448545,
	0.0474431, 0.0496252, 0.051363, 0.0526265, 0.0533936,
	0.0536507, 0.0533936, 0.0526265, 0.051363, 0.0496252,
	0.0474431, 0.0448545, 0.041904, 0.0386417, 0.0351226,
	0.0314056, 0.0275515, 0.0236227, 0.0196813, 0.0157883,
	0.0120019, 0.00837698, 0.00496366, 0.00180654, -0.00105609,
	-0.00359284, -0.00577968, -0.00760025, -0.00904593, -0.0101158,
	-0.0108164, -0.0111614, -0.0111709, -0.0108709, -0.0102925,
	-0.00947096, -0.00844495, -0.00725529, -0.00594414, -0.00455392,
	-0.0031264, -0.00170168, -0.000317443, 0.000991891, 0.00219578,
	0.00326811, 0.00418761, 0.00493815, 0.00550887, 0.00589418,
	0.00609368, 0.00611187, 0.00595784, 0.00564479, 0.00518951,
	0.00461173, 0.00393353, 0.00317861, 0.00237156, 0.00153725,
	0.00070006, -0.000116672, -0.000891279, -0.00160425, -0.00223866,
	-0.00278054, -0.00321907, -0.0035468, -0.00375964, -0.00385691,
	-0.0038411, -0.00371776, -0.00349518, -0.00318403, -0.00279696,
	-0.00234822, -0.00185312, -0.00132763, -0.000787838, -0.000249564,
	0.000272113, 0.000763231, 0.00121129, 0.00160553, 0.00193719,
	0.00219962, 0.00238844, 0.00250151, 0.00253893, 0.00250293,
	0.00239773, 0.00222931, 0.0020052, 0.00173418, 0.00142598,
	0.00109095, 0.000739776, 0.000383135, 3.13903e-05, -0.000305683,
	-0.000619154, -0.000901154, -0.00114506, -0.00134562, -0.00149905,
	-0.0016031, -0.00165701, -0.0016615, -0.00161866, -0.00153186,
	-0.00140558, -0.0012452, -0.00105688, -0.000847271, -0.000623345,
	-0.000392166, -0.000160681, 6.44747e-05, 0.000277154, 0.000471856,
	0.000643857, 0.000789308, 0.00090531, 0.000989951, 0.00104232,
	0.00106247, 0.00105141, 0.00101097, 0.000943775, 0.000853072,
	0.000742642, 0.000616647, 0.000479496, 0.000335699, 0.000189734,
	4.59135e-05, -9.17314e-05, -0.000219556, -0.00033439, -0.000433605,
	-0.000515165, -0.000577656, -0.000620295, -0.000642917, -0.000645954,
	-0.000630382, -0.000597669, -0.000549702, -0.000488713, -0.000417186,
	-0.000337777, -0.000253224, -0.000166258, -7.95297e-05, 4.4726e-06,
	8.34812e-05, 0.000155506, 0.000218875, 0.000272269, 0.000314735,
	0.000345696, 0.000364943, 0.000372621, 0.000369202, 0.00035545,
	0.000332383, 0.000301225, 0.000263358, 0.000220272, 0.000173515,
	0.00012464, 7.51676e-05, 2.65357e-05, -1.99308e-05, -6.3053e-05,
	-0.000101821, -0.000135412, -0.000163201, -0.000184762, -0.000199871,
	-0.000208495, -0.000210779, -0.000207032, -0.000197705, -0.000183369,
	-0.000164694, -0.000142418, -0.000117332, -9.02473e-05, -6.19794e-05,
	-3.33251e-05, -5.0452e-06, 2.21512e-05, 4.76195e-05, 7.07902e-05,
	9.11761e-05, 0.000108378, 0.000122087, 0.000132085, 0.000138247,
	0.000140533, 0.000138991, 0.000133747, 0.000125003, 0.000113028,
	9.81549e-05,
}

// vim: foldmethod=marker
